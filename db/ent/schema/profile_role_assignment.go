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

type ProfileRoleAssignment struct{ ent.Schema }

func (ProfileRoleAssignment) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "profile_role_assignments"},
	}
}

func (ProfileRoleAssignment) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("profile_id", uuid.UUID{}).SchemaType(utils.TextUUID).Immutable(),
		field.String("role").Validate(utils.EnumValidator(constants.RolesAsStringSlice()...)).Immutable(),
		field.String("granted_by").NotEmpty().Immutable(),
		field.Int64("granted_at").Immutable().Comment("unix millis"),
	}
}

func (ProfileRoleAssignment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("profile", Profile.Type).
			Ref("roles").
			Field("profile_id").
			Required().
			Unique().
			Immutable(),
	}
}

func (ProfileRoleAssignment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("profile_id", "role").Unique(),
	}
}
