// Package llm - extractor.go builds structured-output prompts.
package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/prompts"
)

// ExtractionSchema defines the JSON structure a prompt asks the model for.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "QuoteDraft")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions listed before the input
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// QuoteDraftSchema returns the schema for a renovation quote draft
func QuoteDraftSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "QuoteDraft",
		Description: prompts.MustRender(prompts.DraftSystem, nil),
		Fields: []SchemaField{
			{
				Name:        "work_items",
				Type:        `[{"name": "string", "description": "string", "hours": number, "hourly_rate": number}]`,
				Description: "One entry per work step; hours for the whole job",
				Required:    true,
			},
			{
				Name:        "materials",
				Type:        `[{"name": "string", "quantity": number, "unit": "string", "price_per_unit": number}]`,
				Description: "Materials the contractor buys; leave out what the customer supplies",
				Required:    true,
			},
			{
				Name:        "equipment",
				Type:        `[{"name": "string", "quantity": number, "unit": "string", "price_per_unit": number}]`,
				Description: "Rented equipment such as containers or scaffolding",
				Required:    false,
			},
			{
				Name:        "notes",
				Type:        `["string"]`,
				Description: "Assumptions the draft relies on",
				Required:    false,
			},
		},
		Rules: []string{
			"Do not merge different trades into one work item.",
			"Do not add contingency or buffer lines.",
			"If the customer supplies material, do not list it.",
		},
	}
}
