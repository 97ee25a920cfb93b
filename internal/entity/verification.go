package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/estatehub/constants"
)

// ProfileVerification is one entry of a profile's append-only review history.
type ProfileVerification struct {
	ID         uuid.UUID                    `json:"id"`
	ProfileID  uuid.UUID                    `json:"profile_id"`
	Status     constants.VerificationStatus `json:"status"`
	ReviewerID string                       `json:"reviewer_id,omitempty"`
	Note       string                       `json:"note,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
}

// ProfileRoleAssignment links a profile to a permission role.
type ProfileRoleAssignment struct {
	ProfileID uuid.UUID      `json:"profile_id"`
	Role      constants.Role `json:"role"`
	GrantedBy string         `json:"granted_by"`
	GrantedAt time.Time      `json:"granted_at"`
}

// Listing is the minimal listing view used by the profile delete policy.
type Listing struct {
	ID        uuid.UUID               `json:"id"`
	ProfileID uuid.UUID               `json:"profile_id"`
	Title     string                  `json:"title"`
	Status    constants.ListingStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
}
