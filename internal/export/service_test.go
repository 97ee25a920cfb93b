package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

type stubLister struct {
	profiles []*entity.Profile
}

func (s stubLister) ListProfiles(context.Context, session.Session) ([]*entity.Profile, error) {
	return s.profiles, nil
}

func (s stubLister) Views(_ context.Context, plist []*entity.Profile) ([]*profile.View, error) {
	out := make([]*profile.View, 0, len(plist))
	for _, p := range plist {
		out = append(out, &profile.View{
			Profile:     p,
			Completion:  profile.CalculateCompletion(p),
			DisplayName: profile.DisplayName(p),
			Roles:       []constants.Role{constants.RoleOwner},
		})
	}
	return out, nil
}

func TestExportProfilesXLSX(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := stubLister{profiles: []*entity.Profile{
		{
			ID: uuid.New(), Type: constants.ProfileTypeIndividual, Active: true,
			VerificationStatus: constants.VerificationPending, CreatedAt: created,
			Details: &entity.IndividualDetails{FirstName: "Ada", LastName: "Lovelace", Phone: "+15555550100"},
		},
		{
			ID: uuid.New(), Type: constants.ProfileTypeBusiness,
			VerificationStatus: constants.VerificationVerified, CreatedAt: created,
			Details: &entity.BusinessDetails{LegalName: "Acme Ltd", Address: "1 Main St"},
		},
	}}
	svc := NewService(lister, slog.New(slog.NewTextHandler(io.Discard, nil)))

	data, err := svc.ExportProfilesXLSX(context.Background(), session.Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][2] != "Display Name" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][2] != "Ada Lovelace" || rows[1][5] != "60" || rows[1][6] != "+15555550100" {
		t.Fatalf("individual row = %v", rows[1])
	}
	if rows[2][2] != "Acme Ltd" || rows[2][4] != "VERIFIED" || rows[2][7] != "1 Main St" {
		t.Fatalf("business row = %v", rows[2])
	}
	if rows[2][9] != "2026-03-01" {
		t.Fatalf("created = %q", rows[2][9])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}
