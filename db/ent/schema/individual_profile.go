package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/estatehub/db/ent/schema/utils"
)

type IndividualProfile struct{ ent.Schema }

func (IndividualProfile) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "individual_profiles"},
	}
}

func (IndividualProfile) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable().StorageKey("profile_id"),
		field.String("first_name").Default(""),
		field.String("last_name").Default(""),
		field.String("gender").Default(""),
		field.String("birth_date").Default("").Validate(utils.DateValidator),
		field.String("phone").Default(""),
		field.String("address").Default(""),
		field.String("avatar_url").Optional().Nillable(),
	}
}

func (IndividualProfile) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("individual").
			Field("id").
			Required().
			Unique().
			Immutable(),
	}
}
