package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProfileDocument is an evidence file reference attached to a profile.
type ProfileDocument struct {
	ID          uuid.UUID  `json:"id"`
	ProfileID   uuid.UUID  `json:"profile_id"`
	Kind        string     `json:"kind"`
	FileName    string     `json:"file_name"`
	StorageKey  string     `json:"storage_key"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

// Accepted reports whether the document was consumed by an approved review.
func (d *ProfileDocument) Accepted() bool {
	return d.AcceptedAt != nil
}
