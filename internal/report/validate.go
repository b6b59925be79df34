package report

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed report.schema.json
var schemaJSON []byte

// ErrInvalidReport is wrapped by ValidationError.
var ErrInvalidReport = errors.New("report does not match schema")

// ValidationError lists why a JSON report failed schema validation.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return ErrInvalidReport.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidReport
}

var loadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	return schema, nil
})

// ValidateJSON checks a JSON-encoded report against the report schema.
func ValidateJSON(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return &ValidationError{Detail: fmt.Sprintf("%v", result.Errors)}
}
