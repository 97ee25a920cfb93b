package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/db/ent/schema/utils"
)

// Profile is the shared base row; variant payloads live in individual_profiles
// and business_profiles keyed by the same id.
type Profile struct{ ent.Schema }

func (Profile) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "profiles"},
	}
}

func (Profile) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(utils.NewID).SchemaType(utils.TextUUID).Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.String("profile_type").
			Validate(utils.EnumValidator(constants.ProfileTypes...)).
			Immutable(),
		field.String("verification_status").
			Validate(utils.EnumValidator(constants.VerificationStatuses...)).
			Default(string(constants.VerificationPending)),
		field.Bool("active").Default(false),
		field.Int("resubmissions").NonNegative().Default(0),
		field.Int64("created_at").Immutable().Comment("unix millis"),
		field.Int64("updated_at").Comment("unix millis"),
	}
}

func (Profile) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("profiles").
			Field("user_id").
			Required().
			Unique().
			Immutable(),
		edge.To("individual", IndividualProfile.Type).Unique(),
		edge.To("business", BusinessProfile.Type).Unique(),
		edge.To("documents", ProfileDocument.Type),
		edge.To("verifications", ProfileVerification.Type),
		edge.To("roles", ProfileRoleAssignment.Type),
		edge.To("listings", Listing.Type),
	}
}

func (Profile) Indexes() []ent.Index {
	return []ent.Index{
		// one profile per type per user
		index.Fields("user_id", "profile_type").Unique(),
		// at most one active profile per user
		index.Fields("user_id").
			Unique().
			Annotations(entsql.IndexWhere("active = TRUE")),
	}
}
