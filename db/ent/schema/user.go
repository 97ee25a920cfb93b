package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// User mirrors the identity owned by the external session store.
type User struct{ ent.Schema }

func (User) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "users"},
	}
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		// subject issued by the auth service
		field.String("id").NotEmpty().Immutable(),
		field.String("email").Default(""),
		field.Bool("email_verified").Default(false),
		field.Int64("created_at").Immutable().Comment("unix millis"),
	}
}

func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("profiles", Profile.Type),
	}
}
