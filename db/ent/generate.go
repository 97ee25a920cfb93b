//go:build ignore

package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// go run ./db/ent/generate.go
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:   "gen/ent",
			Package:  "github.com/joseph-ayodele/estatehub/gen/ent",
			Features: []gen.Feature{gen.FeatureLock, gen.FeatureUpsert},
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
