package profile

import (
	"context"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

// View is a profile with its derived fields, as presented to callers.
type View struct {
	*entity.Profile
	Completion  int              `json:"completion"`
	DisplayName string           `json:"display_name"`
	Roles       []constants.Role `json:"roles"`
}

// View derives completion and display name and loads the profile's roles.
func (s *Service) View(ctx context.Context, p *entity.Profile) (*View, error) {
	assignments, err := s.repos.Roles.ListRoles(ctx, p.ID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list roles")
	}
	roles := make([]constants.Role, 0, len(assignments))
	for _, a := range assignments {
		roles = append(roles, a.Role)
	}
	return &View{
		Profile:     p,
		Completion:  CalculateCompletion(p),
		DisplayName: DisplayName(p),
		Roles:       roles,
	}, nil
}

// Views maps View over plist.
func (s *Service) Views(ctx context.Context, plist []*entity.Profile) ([]*View, error) {
	out := make([]*View, 0, len(plist))
	for _, p := range plist {
		v, err := s.View(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
