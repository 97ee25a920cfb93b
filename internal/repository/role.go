package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

type RoleRepository interface {
	GrantRole(ctx context.Context, profileID uuid.UUID, role constants.Role, grantedBy string) (*entity.ProfileRoleAssignment, error)
	RevokeRole(ctx context.Context, profileID uuid.UUID, role constants.Role) error
	ListRoles(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileRoleAssignment, error)
}

type roleRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRoleRepository(db *DB, logger *slog.Logger) RoleRepository {
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *roleRepository) GrantRole(ctx context.Context, profileID uuid.UUID, role constants.Role, grantedBy string) (*entity.ProfileRoleAssignment, error) {
	a := &entity.ProfileRoleAssignment{
		ProfileID: profileID,
		Role:      role,
		GrantedBy: grantedBy,
		GrantedAt: fromMillis(toMillis(time.Now())),
	}
	query, args := r.db.builder().Insert("profile_role_assignments").
		Columns("profile_id", "role", "granted_by", "granted_at").
		Values(profileID.String(), string(role), grantedBy, toMillis(a.GrantedAt)).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return nil, common.ConflictErrorf("role %s is already granted", role)
		}
		r.logger.Error("failed to grant role", "profile_id", profileID, "role", role, "error", err)
		return nil, err
	}
	return a, nil
}

func (r *roleRepository) RevokeRole(ctx context.Context, profileID uuid.UUID, role constants.Role) error {
	query, args := r.db.builder().Delete("profile_role_assignments").
		Where(entsql.And(
			entsql.EQ("profile_id", profileID.String()),
			entsql.EQ("role", string(role)),
		)).
		Query()
	n, err := execAffected(ctx, r.db.drv, query, args)
	if err != nil {
		r.logger.Error("failed to revoke role", "profile_id", profileID, "role", role, "error", err)
		return err
	}
	if n == 0 {
		return common.NotFoundErrorf("role %s is not granted", role)
	}
	return nil
}

func (r *roleRepository) ListRoles(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileRoleAssignment, error) {
	b := r.db.builder()
	query, args := b.Select("role", "granted_by", "granted_at").
		From(b.Table("profile_role_assignments")).
		Where(entsql.EQ("profile_id", profileID.String())).
		OrderBy("granted_at", "role").
		Query()
	var out []*entity.ProfileRoleAssignment
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		a := entity.ProfileRoleAssignment{ProfileID: profileID}
		var role string
		var grantedAt int64
		if err := rows.Scan(&role, &a.GrantedBy, &grantedAt); err != nil {
			return err
		}
		a.Role = constants.Role(role)
		a.GrantedAt = fromMillis(grantedAt)
		out = append(out, &a)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list roles", "profile_id", profileID, "error", err)
		return nil, err
	}
	return out, nil
}
