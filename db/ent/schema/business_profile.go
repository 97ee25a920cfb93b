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

type BusinessProfile struct{ ent.Schema }

func (BusinessProfile) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "business_profiles"},
	}
}

func (BusinessProfile) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable().StorageKey("profile_id"),
		field.String("legal_name").NotEmpty(),
		field.String("registration_number").Default(""),
		field.String("contact_phone").Default(""),
		field.String("address").Default(""),
		field.String("website").Optional().Nillable(),
	}
}

func (BusinessProfile) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("business").
			Field("id").
			Required().
			Unique().
			Immutable(),
	}
}
