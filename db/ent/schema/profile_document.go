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

type ProfileDocument struct{ ent.Schema }

func (ProfileDocument) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "profile_documents"},
	}
}

func (ProfileDocument) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(utils.NewID).SchemaType(utils.TextUUID).Immutable(),
		field.UUID("profile_id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable(),
		field.String("kind").Validate(utils.EnumValidator(constants.DocumentKinds...)).Immutable(),
		field.String("file_name").NotEmpty().Immutable(),
		field.String("storage_key").NotEmpty().Immutable(),
		field.String("content_type").NotEmpty().Immutable(),
		field.Int64("size_bytes").NonNegative().Immutable(),
		field.Int64("uploaded_at").Immutable().Comment("unix millis"),
		// set once when a verification is approved; the row is frozen afterwards
		field.Int64("accepted_at").Optional().Nillable().Comment("unix millis"),
	}
}

func (ProfileDocument) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("documents").
			Field("profile_id").
			Required().
			Unique().
			Immutable(),
	}
}

func (ProfileDocument) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile_id", "uploaded_at"),
	}
}
