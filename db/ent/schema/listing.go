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

// Listing only carries what the profile delete policy needs.
type Listing struct{ ent.Schema }

func (Listing) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "listings"},
	}
}

func (Listing) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(utils.NewID).SchemaType(utils.TextUUID).Immutable(),
		field.UUID("profile_id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable(),
		field.String("title").NotEmpty(),
		field.String("status").
			Validate(utils.EnumValidator(constants.ListingStatuses...)).
			Default(string(constants.ListingDraft)),
		field.Int64("created_at").Immutable().Comment("unix millis"),
	}
}

func (Listing) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("listings").
			Field("profile_id").
			Required().
			Unique().
			Immutable(),
	}
}

func (Listing) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile_id", "status"),
	}
}
