package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/notify"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

const maxNoteLength = 1000

// DocumentUpload references an evidence file already stored by the caller.
type DocumentUpload struct {
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	StorageKey  string `json:"storage_key"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// SubmitDocument attaches evidence to a profile awaiting review.
func (s *Service) SubmitDocument(ctx context.Context, sess session.Session, profileID uuid.UUID, up DocumentUpload) (*entity.ProfileDocument, error) {
	p, err := s.ownedProfile(ctx, sess, profileID)
	if err != nil {
		return nil, err
	}

	validator := common.NewValidator()
	validator.Field("file_name", up.FileName, common.Required, common.MaxLength(255))
	validator.Field("storage_key", up.StorageKey, common.Required, common.MaxLength(1024))
	validator.Field("content_type", up.ContentType, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	contentType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if _, ok := constants.AllowedContentTypes[contentType]; !ok {
		return nil, common.ValidationErrorf("content_type %q is not accepted", up.ContentType)
	}
	if up.SizeBytes <= 0 || up.SizeBytes > constants.MaxDocumentSize {
		return nil, common.ValidationErrorf("size_bytes must be between 1 and %d", constants.MaxDocumentSize)
	}
	if p.VerificationStatus == constants.VerificationVerified {
		return nil, common.ConflictErrorf("profile is already verified")
	}

	doc, err := s.repos.Documents.AddDocument(ctx, &entity.ProfileDocument{
		ProfileID:   profileID,
		Kind:        constants.NormalizeDocumentKind(up.Kind),
		FileName:    strings.TrimSpace(up.FileName),
		StorageKey:  strings.TrimSpace(up.StorageKey),
		ContentType: contentType,
		SizeBytes:   up.SizeBytes,
	})
	if err != nil {
		return nil, classify(err, "add document")
	}
	s.logger.Info("document submitted", "profile_id", profileID, "document_id", doc.ID, "kind", doc.Kind)
	return doc, nil
}

// ListDocuments returns the evidence attached to one of the caller's profiles.
func (s *Service) ListDocuments(ctx context.Context, sess session.Session, profileID uuid.UUID) ([]*entity.ProfileDocument, error) {
	if _, err := s.ownedProfile(ctx, sess, profileID); err != nil {
		return nil, err
	}
	docs, err := s.repos.Documents.ListDocuments(ctx, profileID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list documents")
	}
	return docs, nil
}

// DeleteDocument removes a document that has not been accepted by a review.
func (s *Service) DeleteDocument(ctx context.Context, sess session.Session, profileID, documentID uuid.UUID) error {
	if _, err := s.ownedProfile(ctx, sess, profileID); err != nil {
		return err
	}
	doc, err := s.repos.Documents.GetDocument(ctx, documentID)
	if err != nil {
		return classify(err, "get document")
	}
	if doc.ProfileID != profileID {
		return common.NotFoundErrorf("document %s not found", documentID)
	}
	if doc.Accepted() {
		return common.ForbiddenErrorf("document %s was accepted by a review and cannot be removed", documentID)
	}
	if err := s.repos.Documents.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.ForbiddenErrorf("document %s was accepted by a review and cannot be removed", documentID)
		}
		return classify(err, "delete document")
	}
	return nil
}

// Review records a reviewer decision on a PENDING profile. Approval accepts
// every attached document. The status email and event are best effort.
func (s *Service) Review(ctx context.Context, reviewerID string, profileID uuid.UUID, decision, note string) (*entity.ProfileVerification, error) {
	ctx, span := s.tracer.Start(ctx, "profile.Review", trace.WithAttributes(
		attribute.String("profile_id", profileID.String()),
		attribute.String("decision", decision),
	))
	defer span.End()

	if !s.IsReviewer(reviewerID) {
		return nil, common.ForbiddenErrorf("caller is not a reviewer")
	}
	validator := common.NewValidator()
	validator.Field("decision", decision, common.Required,
		common.OneOf(string(constants.VerificationVerified), string(constants.VerificationRejected)))
	validator.Field("note", note, common.MaxLength(maxNoteLength))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	to := constants.VerificationStatus(strings.ToUpper(strings.TrimSpace(decision)))
	note = strings.TrimSpace(note)
	if to == constants.VerificationRejected && note == "" {
		return nil, common.ValidationErrorf("note is required when rejecting")
	}

	p, err := s.repos.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, classify(err, "get profile")
	}
	if p.VerificationStatus != constants.VerificationPending {
		return nil, common.ConflictErrorf("profile is %s, only PENDING profiles can be reviewed", p.VerificationStatus)
	}

	rec, err := s.repos.Verifications.RecordTransition(ctx, repository.Transition{
		ProfileID:       profileID,
		From:            constants.VerificationPending,
		To:              to,
		ReviewerID:      reviewerID,
		Note:            note,
		AcceptDocuments: to == constants.VerificationVerified,
	})
	if err != nil {
		return nil, classify(err, "record verification")
	}
	s.logger.Info("profile reviewed", "profile_id", profileID, "reviewer_id", reviewerID, "status", to)

	p.VerificationStatus = to
	s.announce(ctx, p, rec)
	return rec, nil
}

// Resubmit moves a REJECTED profile back to PENDING.
func (s *Service) Resubmit(ctx context.Context, sess session.Session, profileID uuid.UUID) (*entity.ProfileVerification, error) {
	ctx, span := s.tracer.Start(ctx, "profile.Resubmit", trace.WithAttributes(attribute.String("profile_id", profileID.String())))
	defer span.End()

	p, err := s.ownedProfile(ctx, sess, profileID)
	if err != nil {
		return nil, err
	}
	if p.VerificationStatus != constants.VerificationRejected {
		return nil, common.ConflictErrorf("profile is %s, only REJECTED profiles can be resubmitted", p.VerificationStatus)
	}
	if s.cfg.MaxResubmissions > 0 && p.Resubmissions >= s.cfg.MaxResubmissions {
		return nil, common.ConflictErrorf("resubmission limit of %d reached", s.cfg.MaxResubmissions)
	}

	rec, err := s.repos.Verifications.RecordTransition(ctx, repository.Transition{
		ProfileID:    profileID,
		From:         constants.VerificationRejected,
		To:           constants.VerificationPending,
		ReviewerID:   sess.UserID,
		Resubmission: true,
	})
	if err != nil {
		return nil, classify(err, "record resubmission")
	}
	s.logger.Info("profile resubmitted", "profile_id", profileID, "resubmissions", p.Resubmissions+1)

	p.VerificationStatus = constants.VerificationPending
	s.announce(ctx, p, rec)
	return rec, nil
}

// History returns the verification history of a profile to its owner or a
// reviewer.
func (s *Service) History(ctx context.Context, sess session.Session, profileID uuid.UUID) ([]*entity.ProfileVerification, error) {
	if s.IsReviewer(sess.UserID) {
		if _, err := s.repos.Profiles.GetByID(ctx, profileID); err != nil {
			return nil, classify(err, "get profile")
		}
	} else if _, err := s.ownedProfile(ctx, sess, profileID); err != nil {
		return nil, err
	}
	out, err := s.repos.Verifications.ListVerifications(ctx, profileID)
	if err != nil {
		return nil, common.InternalErrorf(err, "list verifications")
	}
	return out, nil
}

// announce sends the status email and event. Failures are logged only; the
// recorded transition stands.
func (s *Service) announce(ctx context.Context, p *entity.Profile, rec *entity.ProfileVerification) {
	if s.mail != nil {
		user, err := s.repos.Users.GetUser(ctx, p.UserID)
		switch {
		case err != nil:
			s.logger.Warn("status email skipped", "profile_id", p.ID, "error", err)
		case user.Email == "":
			s.logger.Warn("status email skipped: user has no email", "profile_id", p.ID)
		default:
			msg := notify.VerificationMessage(user.Email, DisplayName(p), rec.Status, rec.Note)
			if err := s.mail.Enqueue(ctx, msg); err != nil {
				s.logger.Error("failed to enqueue status email", "profile_id", p.ID, "error", err)
			}
		}
	}

	err := s.events.PublishVerification(ctx, notify.VerificationEvent{
		ProfileID:  p.ID,
		UserID:     p.UserID,
		Status:     rec.Status,
		ReviewerID: rec.ReviewerID,
		Note:       rec.Note,
		OccurredAt: rec.CreatedAt.UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		s.logger.Error("failed to publish verification event", "profile_id", p.ID, "status", rec.Status, "error", err)
	}
}
