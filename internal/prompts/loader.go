// Package prompts holds the model prompt texts used for quote drafts.
// drafting.json maps each Key to a text/template source and is embedded at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Key names one drafting prompt
type Key string

// Drafting prompt keys
const (
	DraftSystem          Key = "quote-draft-system"
	JobTypeHint          Key = "job-type-hint"
	CustomerSuppliesHint Key = "customer-supplies-hint"
)

// Keys lists every prompt a drafting file must define
var Keys = []Key{DraftSystem, JobTypeHint, CustomerSuppliesHint}

// JobType fills JobTypeHint
type JobType struct {
	JobType string
}

// Supplies fills CustomerSuppliesHint
type Supplies struct {
	Materials string
}

//go:embed drafting.json
var draftingJSON []byte

var drafting = sync.OnceValues(func() (*Set, error) {
	return Parse(draftingJSON)
})

// Set is a parsed prompt file
type Set struct {
	templates map[Key]*template.Template
}

// Parse reads a JSON object of key to template source. Every key in Keys must be
// present; unknown keys are ignored.
func Parse(data []byte) (*Set, error) {
	var raw map[Key]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file: %w", err)
	}

	set := &Set{templates: make(map[Key]*template.Template, len(Keys))}
	for _, key := range Keys {
		src, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("prompt key %q is missing", key)
		}
		tmpl, err := template.New(string(key)).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %q: %w", key, err)
		}
		set.templates[key] = tmpl
	}
	return set, nil
}

// Render executes the prompt for key with data
func (s *Set) Render(key Key, data any) (string, error) {
	tmpl, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return sb.String(), nil
}

// Drafting returns the embedded drafting prompts, parsed once
func Drafting() (*Set, error) {
	return drafting()
}

// MustRender renders an embedded drafting prompt and panics on failure.
// The embedded file is covered by tests, so a failure here is a build defect.
func MustRender(key Key, data any) string {
	set, err := Drafting()
	if err != nil {
		panic(fmt.Sprintf("failed to load prompts: %v", err))
	}
	out, err := set.Render(key, data)
	if err != nil {
		panic(err.Error())
	}
	return out
}
