package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

type UserRepository interface {
	UpsertUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertUser inserts the identity mirror or refreshes its email fields.
// created_at is never overwritten.
func (r *userRepository) UpsertUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	created := user.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query, args := r.db.builder().Insert("users").
		Columns("id", "email", "email_verified", "created_at").
		Values(user.ID, user.Email, user.EmailVerified, toMillis(created)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("email")
				u.SetExcluded("email_verified")
			}),
		).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to upsert user", "user_id", user.ID, "error", err)
		return nil, err
	}
	return r.GetUser(ctx, user.ID)
}

func (r *userRepository) GetUser(ctx context.Context, id string) (*entity.User, error) {
	b := r.db.builder()
	query, args := b.Select("id", "email", "email_verified", "created_at").
		From(b.Table("users")).
		Where(entsql.EQ("id", id)).
		Query()

	var out *entity.User
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		var u entity.User
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Email, &u.EmailVerified, &createdAt); err != nil {
			return err
		}
		u.CreatedAt = fromMillis(createdAt)
		out = &u
		return nil
	})
	if err != nil {
		r.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, err
	}
	if out == nil {
		return nil, common.NotFoundErrorf("user %s not found", id)
	}
	return out, nil
}
