package repository

import (
	"context"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

// Transition describes one verification state change of a profile.
type Transition struct {
	ProfileID  uuid.UUID
	From       constants.VerificationStatus
	To         constants.VerificationStatus
	ReviewerID string
	Note       string
	// Resubmission increments the profile's resubmission counter.
	Resubmission bool
	// AcceptDocuments freezes every not-yet-accepted document of the profile.
	AcceptDocuments bool
}

type VerificationRepository interface {
	RecordTransition(ctx context.Context, t Transition) (*entity.ProfileVerification, error)
	ListVerifications(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileVerification, error)
	HasNonRejected(ctx context.Context, profileID uuid.UUID) (bool, error)
}

type verificationRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewVerificationRepository(db *DB, logger *slog.Logger) VerificationRepository {
	return &verificationRepository{
		db:     db,
		logger: logger,
	}
}

// RecordTransition moves the profile status from t.From to t.To and appends
// the history row atomically. If the stored status is no longer t.From the
// transaction is abandoned with a conflict.
func (r *verificationRepository) RecordTransition(ctx context.Context, t Transition) (*entity.ProfileVerification, error) {
	rec := &entity.ProfileVerification{
		ID:         newID(),
		ProfileID:  t.ProfileID,
		Status:     t.To,
		ReviewerID: t.ReviewerID,
		Note:       t.Note,
		CreatedAt:  fromMillis(toMillis(time.Now())),
	}
	now := toMillis(rec.CreatedAt)
	b := r.db.builder()
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		upd := b.Update("profiles").
			Set("verification_status", string(t.To)).
			Set("updated_at", now)
		if t.Resubmission {
			upd.Add("resubmissions", 1)
		}
		query, args := upd.Where(entsql.And(
			entsql.EQ("id", t.ProfileID.String()),
			entsql.EQ("verification_status", string(t.From)),
		)).Query()
		n, err := execAffected(ctx, tx, query, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ConflictErrorf("profile %s is no longer %s", t.ProfileID, t.From)
		}

		query, args = b.Insert("profile_verifications").
			Columns("id", "profile_id", "status", "reviewer_id", "note", "created_at").
			Values(rec.ID.String(), rec.ProfileID.String(), string(rec.Status), rec.ReviewerID, rec.Note, now).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}

		if t.AcceptDocuments {
			query, args = b.Update("profile_documents").
				Set("accepted_at", now).
				Where(entsql.And(
					entsql.EQ("profile_id", t.ProfileID.String()),
					entsql.IsNull("accepted_at"),
				)).
				Query()
			if err := tx.Exec(ctx, query, args, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.Error("failed to record verification", "profile_id", t.ProfileID, "to", t.To, "error", err)
		}
		return nil, err
	}
	return rec, nil
}

func (r *verificationRepository) ListVerifications(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileVerification, error) {
	b := r.db.builder()
	query, args := b.Select("id", "profile_id", "status", "reviewer_id", "note", "created_at").
		From(b.Table("profile_verifications")).
		Where(entsql.EQ("profile_id", profileID.String())).
		OrderBy("created_at", "id").
		Query()
	var out []*entity.ProfileVerification
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		var (
			v               entity.ProfileVerification
			id, pid, status string
			createdAt       int64
		)
		if err := rows.Scan(&id, &pid, &status, &v.ReviewerID, &v.Note, &createdAt); err != nil {
			return err
		}
		var err error
		if v.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if v.ProfileID, err = uuid.Parse(pid); err != nil {
			return err
		}
		v.Status = constants.VerificationStatus(status)
		v.CreatedAt = fromMillis(createdAt)
		out = append(out, &v)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list verifications", "profile_id", profileID, "error", err)
		return nil, err
	}
	return out, nil
}

// HasNonRejected reports whether any history entry is PENDING or VERIFIED.
func (r *verificationRepository) HasNonRejected(ctx context.Context, profileID uuid.UUID) (bool, error) {
	b := r.db.builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table("profile_verifications")).
		Where(entsql.And(
			entsql.EQ("profile_id", profileID.String()),
			entsql.NEQ("status", string(constants.VerificationRejected)),
		)).
		Query()
	var n int
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		r.logger.Error("failed to inspect verification history", "profile_id", profileID, "error", err)
		return false, err
	}
	return n > 0, nil
}
