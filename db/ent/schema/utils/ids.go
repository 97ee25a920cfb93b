package utils

import (
	"entgo.io/ent/dialect"
	"github.com/google/uuid"
)

// TextUUID stores UUID fields as their canonical string form on every dialect.
var TextUUID = map[string]string{
	dialect.Postgres: "text",
	dialect.SQLite:   "text",
}

// NewID returns a time-ordered UUIDv7.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
