package server

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

const (
	datePattern = `^([0-9]{4}-[0-9]{2}-[0-9]{2})?$`
	// Enumerations are matched case-insensitively by the service.
	enumString = `{"type": "string", "maxLength": 32}`
	individualDef = `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"first_name": {"type": "string", "maxLength": 100},
			"last_name":  {"type": "string", "maxLength": 100},
			"gender":     ` + enumString + `,
			"birth_date": {"type": "string", "pattern": "` + datePattern + `"},
			"phone":      {"type": "string", "maxLength": 32},
			"address":    {"type": "string", "maxLength": 255},
			"avatar_url": {"type": ["string", "null"], "maxLength": 2048}
		}
	}`
	businessDef = `{
		"type": "object",
		"additionalProperties": false,
		"required": ["legal_name"],
		"properties": {
			"legal_name":          {"type": "string", "minLength": 1, "maxLength": 200},
			"registration_number": {"type": "string", "maxLength": 64},
			"contact_phone":       {"type": "string", "maxLength": 32},
			"address":             {"type": "string", "maxLength": 255},
			"website":             {"type": ["string", "null"], "maxLength": 2048}
		}
	}`
)

var (
	createProfileSchema = jsonschema.MustCompileString("create_profile.json", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["type"],
		"properties": {
			"type":       `+enumString+`,
			"individual": `+individualDef+`,
			"business":   `+businessDef+`
		}
	}`)

	// Patch bodies are flat; variant membership is checked by the service.
	patchProfileSchema = jsonschema.MustCompileString("patch_profile.json", `{
		"type": "object",
		"additionalProperties": false,
		"minProperties": 1,
		"properties": {
			"first_name":          {"type": "string", "maxLength": 100},
			"last_name":           {"type": "string", "maxLength": 100},
			"gender":              `+enumString+`,
			"birth_date":          {"type": "string", "pattern": "`+datePattern+`"},
			"phone":               {"type": "string", "maxLength": 32},
			"avatar_url":          {"type": ["string", "null"], "maxLength": 2048},
			"legal_name":          {"type": "string", "maxLength": 200},
			"registration_number": {"type": "string", "maxLength": 64},
			"contact_phone":       {"type": "string", "maxLength": 32},
			"website":             {"type": ["string", "null"], "maxLength": 2048},
			"address":             {"type": "string", "maxLength": 255}
		}
	}`)

	provisionSchema = jsonschema.MustCompileString("provision.json", `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"pending_type": {"type": "string"}
		}
	}`)

	switchSchema = jsonschema.MustCompileString("switch_profile.json", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["profile_id"],
		"properties": {
			"profile_id": {"type": "string", "format": "uuid"}
		}
	}`)

	documentSchema = jsonschema.MustCompileString("document.json", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["file_name", "storage_key", "content_type", "size_bytes"],
		"properties": {
			"kind":         {"type": "string", "maxLength": 64},
			"file_name":    {"type": "string", "minLength": 1, "maxLength": 255},
			"storage_key":  {"type": "string", "minLength": 1, "maxLength": 1024},
			"content_type": {"type": "string", "minLength": 1},
			"size_bytes":   {"type": "integer", "minimum": 1}
		}
	}`)

	roleSchema = jsonschema.MustCompileString("role.json", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["role"],
		"properties": {
			"role": {"type": "string", "minLength": 1}
		}
	}`)

	reviewSchema = jsonschema.MustCompileString("review.json", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["decision"],
		"properties": {
			"decision": {"type": "string"},
			"note":     {"type": "string", "maxLength": 1000}
		}
	}`)
)

// decodeValidated checks raw against schema and decodes it into out. An empty
// body is treated as an empty object.
func decodeValidated(schema *jsonschema.Schema, raw []byte, out any) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return common.ValidationErrorf("request body is not valid JSON")
	}
	if err := schema.Validate(doc); err != nil {
		return common.ValidationErrorf("%s", schemaMessage(err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return common.ValidationErrorf("request body does not match the expected shape")
	}
	return nil
}

// schemaMessage flattens the first leaf cause into "location: message".
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return ve.Message
	}
	return loc + ": " + ve.Message
}
