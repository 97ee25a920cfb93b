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

// ProfileVerification is append-only history; rows are never updated.
type ProfileVerification struct{ ent.Schema }

func (ProfileVerification) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "profile_verifications"},
	}
}

func (ProfileVerification) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(utils.NewID).SchemaType(utils.TextUUID).Immutable(),
		field.UUID("profile_id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable(),
		field.String("status").Validate(utils.EnumValidator(constants.VerificationStatuses...)).Immutable(),
		field.String("reviewer_id").Default("").Immutable(),
		field.String("note").Default("").Immutable(),
		field.Int64("created_at").Immutable().Comment("unix millis"),
	}
}

func (ProfileVerification) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("verifications").
			Field("profile_id").
			Required().
			Unique().
			Immutable(),
	}
}

func (ProfileVerification) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile_id", "created_at"),
	}
}
