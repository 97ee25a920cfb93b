package profile

import (
	"strings"

	"github.com/joseph-ayodele/estatehub/internal/entity"
)

// PlaceholderName is shown when a profile has no name yet.
const PlaceholderName = "Unnamed profile"

type weightedField struct {
	weight int
	value  string
}

// CalculateCompletion returns the summed weight of the populated required
// fields of p's variant. Each variant's weights add up to 100; optional fields
// never count.
func CalculateCompletion(p *entity.Profile) int {
	if p == nil {
		return 0
	}
	var fields []weightedField
	switch d := p.Details.(type) {
	case *entity.IndividualDetails:
		fields = []weightedField{
			{20, d.FirstName},
			{20, d.LastName},
			{20, d.Phone},
			{15, d.BirthDate},
			{10, d.Gender},
			{15, d.Address},
		}
	case *entity.BusinessDetails:
		fields = []weightedField{
			{30, d.LegalName},
			{25, d.RegistrationNumber},
			{25, d.ContactPhone},
			{20, d.Address},
		}
	}
	score := 0
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" {
			score += f.weight
		}
	}
	return score
}

// DisplayName returns the individual's full name or the business's legal name,
// or PlaceholderName when those are blank.
func DisplayName(p *entity.Profile) string {
	if p == nil {
		return PlaceholderName
	}
	var name string
	switch d := p.Details.(type) {
	case *entity.IndividualDetails:
		name = strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
	case *entity.BusinessDetails:
		name = strings.TrimSpace(d.LegalName)
	}
	if name == "" {
		return PlaceholderName
	}
	return name
}
