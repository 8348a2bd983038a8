// Command gen-schema emits the JSON schema for the wire-format action batch,
// for embedding in prompts and validating producer output.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/skovand/redline/internal/edit"
)

func main() {
	if err := generateSchema(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
}

// generateSchema writes the schema to the file argument when given,
// otherwise to stdout.
func generateSchema(args []string) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	schema := reflector.Reflect(&edit.WireAction{})
	schema.Title = "Redline Action"
	schema.Description = "One action of a redline edit batch; a batch is a JSON array of these"
	schema.Version = "https://json-schema.org/draft/2020-12/schema"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	schemaJSON = append(schemaJSON, '\n')

	if len(args) == 0 {
		_, err = os.Stdout.Write(schemaJSON)
		return err
	}

	schemaPath := args[0]
	if dir := filepath.Dir(schemaPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create schema directory: %w", err)
		}
	}
	if err := os.WriteFile(schemaPath, schemaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
