package entity

import (
	"strings"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

const (
	maxNameLength    = 100
	maxAddressLength = 255
	maxURLLength     = 2048
)

var genders = []string{"FEMALE", "MALE", "OTHER", "UNDISCLOSED"}

// ValidateDetails checks the per-variant field constraints.
func ValidateDetails(d Details) error {
	v := common.NewValidator()
	switch d := d.(type) {
	case *IndividualDetails:
		v.Field("first_name", d.FirstName, common.MaxLength(maxNameLength))
		v.Field("last_name", d.LastName, common.MaxLength(maxNameLength))
		v.Field("gender", d.Gender, common.OneOf(genders...))
		v.Field("birth_date", d.BirthDate, common.Date)
		v.Field("phone", d.Phone, common.Phone)
		v.Field("address", d.Address, common.MaxLength(maxAddressLength))
		v.Field("avatar_url", d.AvatarURL, common.MaxLength(maxURLLength))
	case *BusinessDetails:
		v.Field("legal_name", d.LegalName, common.Required, common.MaxLength(maxNameLength*2))
		v.Field("registration_number", d.RegistrationNumber, common.MaxLength(64))
		v.Field("contact_phone", d.ContactPhone, common.Phone)
		v.Field("address", d.Address, common.MaxLength(maxAddressLength))
		v.Field("website", d.Website, common.MaxLength(maxURLLength))
	default:
		return common.ValidationErrorf("unknown profile variant")
	}
	return common.ValidateAndReturnError(v)
}

// NormalizeDetails trims whitespace and canonicalizes enumerations in place.
func NormalizeDetails(d Details) {
	switch d := d.(type) {
	case *IndividualDetails:
		d.FirstName = strings.TrimSpace(d.FirstName)
		d.LastName = strings.TrimSpace(d.LastName)
		d.Gender = strings.ToUpper(strings.TrimSpace(d.Gender))
		d.BirthDate = strings.TrimSpace(d.BirthDate)
		d.Phone = strings.TrimSpace(d.Phone)
		d.Address = strings.TrimSpace(d.Address)
		d.AvatarURL = trimmedOrNil(d.AvatarURL)
	case *BusinessDetails:
		d.LegalName = strings.TrimSpace(d.LegalName)
		d.RegistrationNumber = strings.TrimSpace(d.RegistrationNumber)
		d.ContactPhone = strings.TrimSpace(d.ContactPhone)
		d.Address = strings.TrimSpace(d.Address)
		d.Website = trimmedOrNil(d.Website)
	}
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// ApplyPatch returns a copy of d with patch applied. Setting a field that does
// not exist on the variant is a validation error.
func ApplyPatch(d Details, patch ProfilePatch) (Details, error) {
	switch d := d.(type) {
	case *IndividualDetails:
		if patch.LegalName != nil || patch.RegistrationNumber != nil || patch.ContactPhone != nil || patch.Website != nil {
			return nil, common.ValidationErrorf("business fields cannot be set on an individual profile")
		}
		out := *d
		setString(&out.FirstName, patch.FirstName)
		setString(&out.LastName, patch.LastName)
		setString(&out.Gender, patch.Gender)
		setString(&out.BirthDate, patch.BirthDate)
		setString(&out.Phone, patch.Phone)
		setString(&out.Address, patch.Address)
		if patch.AvatarURL != nil {
			out.AvatarURL = patch.AvatarURL
		}
		NormalizeDetails(&out)
		return &out, nil
	case *BusinessDetails:
		if patch.FirstName != nil || patch.LastName != nil || patch.Gender != nil || patch.BirthDate != nil || patch.Phone != nil || patch.AvatarURL != nil {
			return nil, common.ValidationErrorf("individual fields cannot be set on a business profile")
		}
		out := *d
		setString(&out.LegalName, patch.LegalName)
		setString(&out.RegistrationNumber, patch.RegistrationNumber)
		setString(&out.ContactPhone, patch.ContactPhone)
		setString(&out.Address, patch.Address)
		if patch.Website != nil {
			out.Website = patch.Website
		}
		NormalizeDetails(&out)
		return &out, nil
	}
	return nil, common.ValidationErrorf("unknown profile variant")
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p == ProfilePatch{}
}
