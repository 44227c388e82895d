package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// GetSchemaFromConfig returns the indented JSON schema of config. Property names
// follow the yaml tags, so the schema describes the config files, and nested
// structs are inlined.
func GetSchemaFromConfig(config any) (string, error) {
	reflector := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}

	schema := reflector.Reflect(config)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to encode schema", err)
	}

	return string(jsonSchemaBytes), nil
}
