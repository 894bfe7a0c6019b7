package batch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://regdocs.local/schemas/resolutions_processed.schema.json"

// recordSchema is the contract the indexer relies on.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "resolution_date", "concept", "full_text", "process_date"],
    "additionalProperties": false,
    "properties": {
      "name": {"type": ["string", "null"]},
      "resolution_date": {
        "oneOf": [
          {"type": "null"},
          {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
        ]
      },
      "concept": {"type": ["string", "null"]},
      "full_text": {"type": "string", "minLength": 1},
      "process_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
    }
  }
}`

var (
	compiledOnce sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
)

// Schema returns the compiled batch schema.
func Schema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020

		if err := c.AddResource(schemaURL, strings.NewReader(recordSchema)); err != nil {
			compileErr = fmt.Errorf("batch schema load failed: %w", err)

			return
		}

		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("batch schema compile failed: %w", compileErr)
		}
	})

	return compiled, compileErr
}
