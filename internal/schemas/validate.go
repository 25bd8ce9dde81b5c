// Package schemas checks documents, job import files in particular, against
// the JSON Schemas embedded in the binary.
package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-tracker/internal/analytics"
	schemafiles "github.com/jonathan/job-tracker/schemas"
)

// rootPath names the document itself in a Violation.
const rootPath = "(root)"

// Violation is one rule a document breaks, located by a dotted path such as
// "jobs.2.status".
type Violation struct {
	Path    string
	Problem string
}

// DocumentError lists every violation found in a document, ordered by path.
type DocumentError struct {
	Schema     string
	Violations []Violation
}

func (e *DocumentError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Problem)
	}
	return fmt.Sprintf("document does not match %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Paths returns the location of every violation.
func (e *DocumentError) Paths() []string {
	paths := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		paths = append(paths, v.Path)
	}
	return paths
}

// SchemaError means the schema could not be found or compiled; the document
// was never checked.
type SchemaError struct {
	Schema string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unusable schema %s: %v", e.Schema, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Check validates doc against an inline schema. Both are JSON text.
func Check(schema, doc []byte) error {
	return check("inline schema", gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
}

// CheckEmbedded validates doc against the embedded schema called name.
func CheckEmbedded(name string, doc []byte) error {
	schema, err := schemafiles.Load(name)
	if err != nil {
		return &SchemaError{Schema: name, Err: err}
	}
	return check(name, gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
}

func check(name string, schema, doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return &SchemaError{Schema: name, Err: err}
	}
	if result.Valid() {
		return nil
	}

	docErr := &DocumentError{Schema: name}
	for _, re := range result.Errors() {
		path := re.Field()
		if path == "" {
			path = rootPath
		}
		docErr.Violations = append(docErr.Violations, Violation{Path: path, Problem: re.Description()})
	}
	sort.SliceStable(docErr.Violations, func(i, j int) bool {
		return docErr.Violations[i].Path < docErr.Violations[j].Path
	})
	return docErr
}

// ReadJobImport loads a job import file and returns it as JSON once it
// passes the job import schema. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON. A top-level list of jobs is wrapped as
// {"jobs": [...]}.
func ReadJobImport(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML import file: %w", err)
		}
		doc = plainTimestamps(doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON import file: %w", err)
		}
	}

	if jobs, ok := doc.([]any); ok {
		doc = map[string]any{"jobs": jobs}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode import file: %w", err)
	}

	if err := CheckEmbedded(schemafiles.JobImport, data); err != nil {
		return nil, err
	}
	return data, nil
}

// plainTimestamps turns the time.Time values yaml.v3 produces for unquoted
// dates back into text. Midnight UTC values are calendar dates and become
// DateLayout; anything with a clock keeps RFC 3339.
func plainTimestamps(v any) any {
	switch v := v.(type) {
	case time.Time:
		if v.Equal(v.Truncate(24*time.Hour)) && v.Location() == time.UTC {
			return v.Format(analytics.DateLayout)
		}
		return v.Format(time.RFC3339Nano)
	case map[string]any:
		for k, item := range v {
			v[k] = plainTimestamps(item)
		}
	case []any:
		for i, item := range v {
			v[i] = plainTimestamps(item)
		}
	}
	return v
}
