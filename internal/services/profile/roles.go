package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

// GrantRole assigns role to one of the caller's profiles. AGENT needs a
// VERIFIED profile.
func (s *Service) GrantRole(ctx context.Context, sess session.Session, profileID uuid.UUID, role string) (*entity.ProfileRoleAssignment, error) {
	p, err := s.ownedProfile(ctx, sess, profileID)
	if err != nil {
		return nil, err
	}
	r, ok := constants.ParseRole(role)
	if !ok {
		return nil, common.ValidationErrorf("role must be one of %v", constants.RolesAsStringSlice())
	}
	if r == constants.RoleAgent && p.VerificationStatus != constants.VerificationVerified {
		return nil, common.ConflictErrorf("the AGENT role requires a verified profile")
	}
	a, err := s.repos.Roles.GrantRole(ctx, profileID, r, sess.UserID)
	if err != nil {
		return nil, classify(err, "grant role")
	}
	s.logger.Info("role granted", "profile_id", profileID, "role", r, "granted_by", sess.UserID)
	return a, nil
}

// RevokeRole removes role from one of the caller's profiles. OWNER stays.
func (s *Service) RevokeRole(ctx context.Context, sess session.Session, profileID uuid.UUID, role string) error {
	if _, err := s.ownedProfile(ctx, sess, profileID); err != nil {
		return err
	}
	r, ok := constants.ParseRole(role)
	if !ok {
		return common.ValidationErrorf("role must be one of %v", constants.RolesAsStringSlice())
	}
	if r == constants.RoleOwner {
		return common.ConflictErrorf("the OWNER role cannot be revoked")
	}
	if err := s.repos.Roles.RevokeRole(ctx, profileID, r); err != nil {
		return classify(err, "revoke role")
	}
	s.logger.Info("role revoked", "profile_id", profileID, "role", r, "revoked_by", sess.UserID)
	return nil
}

// ListRoles returns the role assignments of one of the caller's profiles.
func (s *Service) ListRoles(ctx context.Context, sess session.Session, profileID uuid.UUID) ([]*entity.ProfileRoleAssignment, error) {
	if _, err := s.ownedProfile(ctx, sess, profileID); err != nil {
		return nil, err
	}
	out, err := s.repos.Roles.ListRoles(ctx, profileID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list roles")
	}
	return out, nil
}
