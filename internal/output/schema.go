package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed report.schema.json
var reportSchema string

const reportSchemaURL = "https://github.com/panbanda/remapper/schema/report.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(reportSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse report schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(reportSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add report schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(reportSchemaURL)
	})
	return compiled, compileErr
}

// ReportSchema returns the JSON schema of persisted match reports.
func ReportSchema() string { return reportSchema }

// ValidateReport checks a persisted JSON report against the report schema.
func ValidateReport(data []byte) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	return nil
}
