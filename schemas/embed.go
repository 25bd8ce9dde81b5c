// Package schemas holds the JSON Schemas for files the job tracker reads.
package schemas

import "embed"

// JobImport is the schema for `jobtrack jobs import` files.
const JobImport = "job_import.schema.json"

//go:embed *.schema.json
var files embed.FS

// Load returns the named schema document.
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists every embedded schema.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
