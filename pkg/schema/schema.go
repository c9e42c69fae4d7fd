// Package schema validates workflow documents against the JSON schema the
// sync surfaces accept.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// workflowSchema is the document contract shared by the CLI, the sync API and
// the file watcher. Parameters, credentials, settings and pin data stay
// opaque.
var workflowSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "nodes", "connections"},
	"properties": map[string]any{
		"name": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"active": map[string]any{"type": "boolean"},
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "type"},
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "minLength": 1},
					"type":        map[string]any{"type": "string", "minLength": 1},
					"typeVersion": map[string]any{"type": "number"},
					"position": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "number"},
						"minItems": 2,
						"maxItems": 2,
					},
					"parameters":  map[string]any{"type": "object"},
					"credentials": map[string]any{"type": "object"},
					"disabled":    map[string]any{"type": "boolean"},
				},
			},
		},
		"connections": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"main": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":     "object",
								"required": []any{"node"},
								"properties": map[string]any{
									"node":  map[string]any{"type": "string"},
									"type":  map[string]any{"type": "string"},
									"index": map[string]any{"type": "integer"},
								},
							},
						},
					},
				},
			},
		},
		"settings": map[string]any{"type": "object"},
		"pinData":  map[string]any{"type": "object"},
	},
}

// ValidateDocument checks raw JSON against the workflow document schema.
// Failures are non-retryable client errors.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(workflowSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(descriptions, "; "))
	}

	return nil
}
