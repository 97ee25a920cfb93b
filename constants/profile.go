package constants

import "strings"

// ProfileType is the variant tag stored in profiles.profile_type.
type ProfileType string

const (
	ProfileTypeIndividual ProfileType = "INDIVIDUAL"
	ProfileTypeBusiness   ProfileType = "BUSINESS"
)

// DefaultProfileType is used when provisioning without a pending type.
const DefaultProfileType = ProfileTypeIndividual

var ProfileTypes = []string{string(ProfileTypeIndividual), string(ProfileTypeBusiness)}

// ParseProfileType accepts any casing and surrounding whitespace.
func ParseProfileType(s string) (ProfileType, bool) {
	switch ProfileType(strings.ToUpper(strings.TrimSpace(s))) {
	case ProfileTypeIndividual:
		return ProfileTypeIndividual, true
	case ProfileTypeBusiness:
		return ProfileTypeBusiness, true
	}
	return "", false
}

// VerificationStatus is the reviewer-assigned trust state of a profile.
// VERIFIED is terminal; REJECTED may be resubmitted back to PENDING.
type VerificationStatus string

// Stable values (store these exact strings in DB).
const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

var VerificationStatuses = []string{
	string(VerificationPending),
	string(VerificationVerified),
	string(VerificationRejected),
}

// Role is a permission role granted to a profile.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAgent  Role = "AGENT"
	RoleBuyer  Role = "BUYER"
	RoleTenant Role = "TENANT"
)

var allRoles = []Role{RoleOwner, RoleAgent, RoleBuyer, RoleTenant}

func RolesAsStringSlice() []string {
	result := make([]string, len(allRoles))
	for i, r := range allRoles {
		result[i] = string(r)
	}
	return result
}

func ParseRole(s string) (Role, bool) {
	normalized := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range allRoles {
		if r == normalized {
			return r, true
		}
	}
	return "", false
}

// ListingStatus is the lifecycle state of a property listing.
type ListingStatus string

const (
	ListingDraft    ListingStatus = "DRAFT"
	ListingActive   ListingStatus = "ACTIVE"
	ListingArchived ListingStatus = "ARCHIVED"
)

var ListingStatuses = []string{string(ListingDraft), string(ListingActive), string(ListingArchived)}
