package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/estatehub/constants"
)

// Profile is the shared base record. Details holds the variant payload and its
// concrete type always agrees with Type.
type Profile struct {
	ID                 uuid.UUID                    `json:"id"`
	UserID             string                       `json:"user_id"`
	Type               constants.ProfileType        `json:"type"`
	VerificationStatus constants.VerificationStatus `json:"verification_status"`
	Active             bool                         `json:"active"`
	Resubmissions      int                          `json:"resubmissions"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
	Details            Details                      `json:"details"`
}

// Details is implemented only by *IndividualDetails and *BusinessDetails.
type Details interface {
	ProfileType() constants.ProfileType
	sealed()
}

// IndividualDetails holds personal fields. BirthDate is YYYY-MM-DD or empty.
type IndividualDetails struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    string  `json:"gender"`
	BirthDate string  `json:"birth_date"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (*IndividualDetails) ProfileType() constants.ProfileType { return constants.ProfileTypeIndividual }
func (*IndividualDetails) sealed()                            {}

// BusinessDetails holds organization fields.
type BusinessDetails struct {
	LegalName          string  `json:"legal_name"`
	RegistrationNumber string  `json:"registration_number"`
	ContactPhone       string  `json:"contact_phone"`
	Address            string  `json:"address"`
	Website            *string `json:"website,omitempty"`
}

func (*BusinessDetails) ProfileType() constants.ProfileType { return constants.ProfileTypeBusiness }
func (*BusinessDetails) sealed()                          {}

// Individual returns the individual payload, or nil for other variants.
func (p *Profile) Individual() *IndividualDetails {
	d, _ := p.Details.(*IndividualDetails)
	return d
}

// Business returns the business payload, or nil for other variants.
func (p *Profile) Business() *BusinessDetails {
	d, _ := p.Details.(*BusinessDetails)
	return d
}

// EmptyDetails returns a zero payload for the given type.
func EmptyDetails(t constants.ProfileType) Details {
	switch t {
	case constants.ProfileTypeIndividual:
		return &IndividualDetails{}
	case constants.ProfileTypeBusiness:
		return &BusinessDetails{}
	}
	return nil
}

// ProfilePatch is a partial update; nil fields are left untouched. Fields that
// do not belong to the profile's variant are rejected. In JSON, a null
// avatar_url or website clears the field.
type ProfilePatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	LegalName          *string `json:"legal_name,omitempty"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	ContactPhone       *string `json:"contact_phone,omitempty"`
	Website            *string `json:"website,omitempty"`

	Address *string `json:"address,omitempty"`
}

func (p *ProfilePatch) UnmarshalJSON(data []byte) error {
	type plain ProfilePatch
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	if v, ok := raw["avatar_url"]; ok && string(v) == "null" {
		p.AvatarURL = new(string)
	}
	if v, ok := raw["website"]; ok && string(v) == "null" {
		p.Website = new(string)
	}
	return nil
}
