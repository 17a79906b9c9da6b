package config

import (
	"errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON Schema every config file must satisfy
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "namespaces": {
      "type": "object",
      "propertyNames": {"pattern": "^[A-Za-z_][A-Za-z0-9._-]*$"},
      "additionalProperties": {"type": "string"}
    },
    "maxDepth": {"type": "integer", "minimum": 0},
    "output": {"enum": ["console", "json", "junit", "tap"]},
    "bail": {"type": "boolean"},
    "verbose": {"type": "boolean"},
    "noColor": {"type": "boolean"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks a JSON encoded config against Schema
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
