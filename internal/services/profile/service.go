package profile

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/notify"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

// MailQueue accepts status emails for asynchronous delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, msg notify.Message) error
}

// Config is the verification policy.
type Config struct {
	// MaxResubmissions bounds REJECTED -> PENDING transitions; 0 is unlimited.
	MaxResubmissions int
	// Reviewers lists the user ids allowed to review verifications.
	Reviewers []string
}

// Service handles profile business logic.
type Service struct {
	repos  repository.Repositories
	mail   MailQueue
	events notify.Publisher
	cfg    Config
	tracer trace.Tracer
	logger *slog.Logger
}

// NewService creates a new profile service. mail and events may be nil.
func NewService(repos repository.Repositories, mail MailQueue, events notify.Publisher, cfg Config, logger *slog.Logger) *Service {
	if events == nil {
		events = notify.NopPublisher{}
	}
	return &Service{
		repos:  repos,
		mail:   mail,
		events: events,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/joseph-ayodele/estatehub/internal/services/profile"),
		logger: logger,
	}
}

// EnsureRequest is the provisioning input taken at the authentication boundary.
type EnsureRequest struct {
	UserID        string
	Email         string
	EmailVerified bool
	// PendingType is the type chosen during signup, if any.
	PendingType string
}

// EnsureProfile returns the user's active profile, creating a first profile
// when the user has none. Calling it repeatedly yields the same profile.
func (s *Service) EnsureProfile(ctx context.Context, req EnsureRequest) (*entity.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.EnsureProfile", trace.WithAttributes(attribute.String("user_id", req.UserID)))
	defer span.End()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, common.UnauthorizedErrorf("no active session")
	}
	profileType := constants.DefaultProfileType
	if strings.TrimSpace(req.PendingType) != "" {
		pt, ok := constants.ParseProfileType(req.PendingType)
		if !ok {
			return nil, common.ValidationErrorf("profile type must be one of %s", strings.Join(constants.ProfileTypes, ", "))
		}
		profileType = pt
	}

	if _, err := s.repos.Users.UpsertUser(ctx, &entity.User{
		ID:            req.UserID,
		Email:         strings.TrimSpace(req.Email),
		EmailVerified: req.EmailVerified,
	}); err != nil {
		return nil, common.InternalErrorf(err, "mirror user")
	}

	if p, err := s.existingProfile(ctx, req.UserID); err != nil || p != nil {
		return p, err
	}

	p, err := s.repos.Profiles.CreateProfile(ctx, req.UserID, profileType, seedDetails(profileType, req), true)
	switch {
	case err == nil:
		s.logger.Info("profile provisioned", "user_id", req.UserID, "profile_id", p.ID, "type", p.Type)
		return p, nil
	case errors.Is(err, common.ErrConflict):
		// A concurrent provisioning call won the insert.
		s.logger.Info("profile provisioned concurrently, re-fetching", "user_id", req.UserID)
		p, err := s.existingProfile(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, common.InternalErrorf(errors.New("profile vanished after conflict"), "provision profile")
		}
		return p, nil
	case errors.Is(err, common.ErrValidation):
		return nil, err
	default:
		return nil, common.InternalErrorf(err, "provision profile")
	}
}

// existingProfile returns the active profile, or activates and returns the
// oldest profile when none is active. It returns nil, nil for a user without
// profiles.
func (s *Service) existingProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.repos.Profiles.GetActiveProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, common.InternalErrorf(err, "get active profile")
	}
	all, err := s.repos.Profiles.ListProfiles(ctx, userID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list profiles")
	}
	if len(all) == 0 {
		return nil, nil
	}
	first := all[0]
	if err := s.repos.Profiles.SwitchActiveProfile(ctx, userID, first.ID); err != nil {
		return nil, common.InternalErrorf(err, "activate profile")
	}
	first.Active = true
	return first, nil
}

// seedDetails fills the required creation fields a fresh profile needs. A
// business profile gets its legal name from the email local part.
func seedDetails(t constants.ProfileType, req EnsureRequest) entity.Details {
	switch t {
	case constants.ProfileTypeBusiness:
		name, _, _ := strings.Cut(strings.TrimSpace(req.Email), "@")
		if name == "" {
			name = req.UserID
		}
		return &entity.BusinessDetails{LegalName: name}
	default:
		return &entity.IndividualDetails{}
	}
}

// CreateRequest creates an additional profile for the caller.
type CreateRequest struct {
	Type       string
	Individual *entity.IndividualDetails
	Business   *entity.BusinessDetails
}

// CreateProfile creates a profile for the caller. It becomes active only when
// the caller has no other profile.
func (s *Service) CreateProfile(ctx context.Context, sess session.Session, req CreateRequest) (*entity.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.CreateProfile")
	defer span.End()

	validator := common.NewValidator()
	validator.Field("type", req.Type, common.Required, common.OneOf(constants.ProfileTypes...))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	profileType, _ := constants.ParseProfileType(req.Type)

	var details entity.Details
	switch profileType {
	case constants.ProfileTypeIndividual:
		if req.Business != nil {
			return nil, common.ValidationErrorf("business fields cannot be set on an individual profile")
		}
		if req.Individual != nil {
			d := *req.Individual
			details = &d
		}
	case constants.ProfileTypeBusiness:
		if req.Individual != nil {
			return nil, common.ValidationErrorf("individual fields cannot be set on a business profile")
		}
		if req.Business == nil {
			return nil, common.ValidationErrorf("legal_name is required")
		}
		d := *req.Business
		details = &d
	}

	existing, err := s.repos.Profiles.ListProfiles(ctx, sess.UserID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list profiles")
	}
	if len(existing) == 0 {
		if _, err := s.repos.Users.UpsertUser(ctx, &entity.User{ID: sess.UserID, Email: sess.Email, EmailVerified: sess.EmailVerified}); err != nil {
			return nil, common.InternalErrorf(err, "mirror user")
		}
	}

	p, err := s.repos.Profiles.CreateProfile(ctx, sess.UserID, profileType, details, len(existing) == 0)
	if err != nil {
		return nil, classify(err, "create profile")
	}
	s.logger.Info("profile created successfully", "user_id", sess.UserID, "profile_id", p.ID, "type", p.Type)
	return p, nil
}

// UpdateProfile applies a partial update to one of the caller's profiles.
func (s *Service) UpdateProfile(ctx context.Context, sess session.Session, id uuid.UUID, patch entity.ProfilePatch) (*entity.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.UpdateProfile", trace.WithAttributes(attribute.String("profile_id", id.String())))
	defer span.End()

	if _, err := s.ownedProfile(ctx, sess, id); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, common.ValidationErrorf("no fields to update")
	}
	p, err := s.repos.Profiles.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, classify(err, "update profile")
	}
	s.logger.Info("profile updated", "profile_id", id)
	return p, nil
}

// SwitchActiveProfile makes id the caller's active profile.
func (s *Service) SwitchActiveProfile(ctx context.Context, sess session.Session, id uuid.UUID) (*entity.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.SwitchActiveProfile", trace.WithAttributes(attribute.String("profile_id", id.String())))
	defer span.End()

	if err := s.repos.Profiles.SwitchActiveProfile(ctx, sess.UserID, id); err != nil {
		return nil, classify(err, "switch active profile")
	}
	p, err := s.repos.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "get profile")
	}
	return p, nil
}

// ListProfiles returns the caller's profiles in creation order.
func (s *Service) ListProfiles(ctx context.Context, sess session.Session) ([]*entity.Profile, error) {
	plist, err := s.repos.Profiles.ListProfiles(ctx, sess.UserID)
	if err != nil {
		// DB error already logged in repository layer
		return nil, common.InternalErrorf(err, "list profiles")
	}
	return plist, nil
}

// GetActiveProfile returns the caller's active profile or a not-found error.
func (s *Service) GetActiveProfile(ctx context.Context, sess session.Session) (*entity.Profile, error) {
	p, err := s.repos.Profiles.GetActiveProfile(ctx, sess.UserID)
	if err != nil {
		return nil, classify(err, "get active profile")
	}
	return p, nil
}

// GetProfile returns one of the caller's profiles.
func (s *Service) GetProfile(ctx context.Context, sess session.Session, id uuid.UUID) (*entity.Profile, error) {
	return s.ownedProfile(ctx, sess, id)
}

// DeleteProfile removes one of the caller's profiles. A profile with active
// listings and verification history that was not rejected is kept, and the
// active profile can only go once it is the last one.
func (s *Service) DeleteProfile(ctx context.Context, sess session.Session, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "profile.DeleteProfile", trace.WithAttributes(attribute.String("profile_id", id.String())))
	defer span.End()

	p, err := s.ownedProfile(ctx, sess, id)
	if err != nil {
		return err
	}

	listings, err := s.repos.Listings.CountActiveListings(ctx, id)
	if err != nil {
		return common.InternalErrorf(err, "count listings")
	}
	if listings > 0 {
		verified, err := s.repos.Verifications.HasNonRejected(ctx, id)
		if err != nil {
			return common.InternalErrorf(err, "check verification history")
		}
		if verified {
			return common.ConflictErrorf("profile has %d active listings and cannot be deleted", listings)
		}
	}

	if p.Active {
		all, err := s.repos.Profiles.ListProfiles(ctx, sess.UserID)
		if err != nil {
			return common.InternalErrorf(err, "list profiles")
		}
		if len(all) > 1 {
			return common.ConflictErrorf("switch to another profile before deleting the active one")
		}
	}

	if err := s.repos.Profiles.DeleteProfile(ctx, id); err != nil {
		return classify(err, "delete profile")
	}
	s.logger.Info("profile deleted", "user_id", sess.UserID, "profile_id", id)
	return nil
}

// ownedProfile loads id and checks it belongs to the caller.
func (s *Service) ownedProfile(ctx context.Context, sess session.Session, id uuid.UUID) (*entity.Profile, error) {
	if sess.UserID == "" {
		return nil, common.UnauthorizedErrorf("no active session")
	}
	p, err := s.repos.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "get profile")
	}
	if p.UserID != sess.UserID {
		return nil, common.ForbiddenErrorf("profile %s does not belong to the caller", id)
	}
	return p, nil
}

// IsReviewer reports whether userID may review verifications.
func (s *Service) IsReviewer(userID string) bool {
	return userID != "" && slices.Contains(s.cfg.Reviewers, userID)
}

// classify passes domain errors through and wraps everything else as internal.
func classify(err error, op string) error {
	for _, kind := range []error{
		common.ErrValidation,
		common.ErrNotFound,
		common.ErrConflict,
		common.ErrForbidden,
		common.ErrUnauthorized,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return common.InternalErrorf(err, "%s", op)
}
