package values

import (
	"bytes"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := chart.Schema()
		if err != nil {
			schemaErr = err
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			schemaErr = fmt.Errorf("invalid values schema JSON: %w", err)
			return
		}
		if err := compiler.AddResource(chart.SchemaFile, doc); err != nil {
			schemaErr = fmt.Errorf("failed to load values schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(chart.SchemaFile)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile values schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks a merged values tree against the chart schema.
func Validate(values map[string]any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(values); err != nil {
		return fmt.Errorf("values validation failed: %w", err)
	}
	return nil
}
