package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

// ListingRepository exposes the slice of listing storage the profile rules need.
type ListingRepository interface {
	CreateListing(ctx context.Context, profileID uuid.UUID, title string, status constants.ListingStatus) (*entity.Listing, error)
	CountActiveListings(ctx context.Context, profileID uuid.UUID) (int, error)
}

type listingRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewListingRepository(db *DB, logger *slog.Logger) ListingRepository {
	return &listingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *listingRepository) CreateListing(ctx context.Context, profileID uuid.UUID, title string, status constants.ListingStatus) (*entity.Listing, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.ValidationErrorf("title is required")
	}
	if status == "" {
		status = constants.ListingDraft
	}
	l := &entity.Listing{
		ID:        newID(),
		ProfileID: profileID,
		Title:     title,
		Status:    status,
		CreatedAt: fromMillis(toMillis(time.Now())),
	}
	query, args := r.db.builder().Insert("listings").
		Columns("id", "profile_id", "title", "status", "created_at").
		Values(l.ID.String(), profileID.String(), l.Title, string(l.Status), toMillis(l.CreatedAt)).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to create listing", "profile_id", profileID, "error", err)
		return nil, err
	}
	return l, nil
}

func (r *listingRepository) CountActiveListings(ctx context.Context, profileID uuid.UUID) (int, error) {
	b := r.db.builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table("listings")).
		Where(entsql.And(
			entsql.EQ("profile_id", profileID.String()),
			entsql.EQ("status", string(constants.ListingActive)),
		)).
		Query()
	var n int
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		r.logger.Error("failed to count active listings", "profile_id", profileID, "error", err)
		return 0, err
	}
	return n, nil
}
