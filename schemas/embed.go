// Package schemas holds the JSON Schema documents shipped with the binary.
package schemas

import "embed"

// Schema file names
const (
	DraftSchema = "draft.schema.json"
	QuoteSchema = "quote.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the content of an embedded schema
func Read(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Names lists the embedded schema files
func Names() []string {
	return []string{DraftSchema, QuoteSchema}
}
