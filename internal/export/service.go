package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

// ProfileLister is the part of the profile service the export needs.
type ProfileLister interface {
	ListProfiles(ctx context.Context, sess session.Session) ([]*entity.Profile, error)
	Views(ctx context.Context, plist []*entity.Profile) ([]*profile.View, error)
}

// Service produces XLSX bytes for profile exports.
type Service struct {
	profiles ProfileLister
	logger   *slog.Logger
}

func NewService(profiles ProfileLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{profiles: profiles, logger: logger}
}

const sheet = "Profiles"

var headers = []string{
	"Profile ID",
	"Type",
	"Display Name",
	"Active",
	"Verification",
	"Completion %",
	"Phone",
	"Address",
	"Roles",
	"Created",
}

// ExportProfilesXLSX returns a workbook with one row per profile of the caller.
func (s *Service) ExportProfilesXLSX(ctx context.Context, sess session.Session) ([]byte, error) {
	start := time.Now()

	plist, err := s.profiles.ListProfiles(ctx, sess)
	if err != nil {
		return nil, err
	}
	views, err := s.profiles.Views(ctx, plist)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, v := range views {
		row := i + 2
		write := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		phone, address := contactOf(v.Profile)
		roles := make([]string, 0, len(v.Roles))
		for _, r := range v.Roles {
			roles = append(roles, string(r))
		}

		write(1, v.ID.String())
		write(2, string(v.Type))
		write(3, v.DisplayName)
		write(4, v.Active)
		write(5, string(v.VerificationStatus))
		write(6, v.Completion)
		write(7, phone)
		write(8, truncate(address, 140))
		write(9, strings.Join(roles, ", "))
		write(10, v.CreatedAt.UTC().Format("2006-01-02"))
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "D", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 18)
	_ = f.SetColWidth(sheet, "H", "H", 48) // address
	_ = f.SetColWidth(sheet, "I", "J", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", sess.UserID,
		"rows", len(views),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func contactOf(p *entity.Profile) (phone, address string) {
	switch d := p.Details.(type) {
	case *entity.IndividualDetails:
		return d.Phone, d.Address
	case *entity.BusinessDetails:
		return d.ContactPhone, d.Address
	}
	return "", ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
