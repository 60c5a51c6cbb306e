// Package types provides type definitions for structured data used throughout the quote pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// Message is one turn of the conversation that preceded the quote request
type Message struct {
	Role    string `json:"role" validate:"omitempty,oneof=user assistant system"`
	Content string `json:"content" validate:"max=20000"`
}

// Draft is the structured quote proposed by the generative model.
// Every field may be missing or wrong; the pipeline treats it as a hint.
type Draft struct {
	WorkItems []WorkItem `json:"work_items"`
	Materials []Material `json:"materials"`
	Equipment []Material `json:"equipment"`
	Notes     []string   `json:"notes,omitempty"`
}

// QuoteRequest is the input handed to the pipeline by a request handler
type QuoteRequest struct {
	Description  string    `json:"description" validate:"required_without=JobType,max=20000"`
	Conversation []Message `json:"conversation,omitempty" validate:"max=200,dive"`
	JobType      string    `json:"job_type,omitempty" validate:"max=100"`

	// Size parameters; which one applies depends on the job's unit type
	Area     float64 `json:"area,omitempty" validate:"gte=0,lte=100000"`
	Quantity float64 `json:"quantity,omitempty" validate:"gte=0,lte=100000"`
	Rooms    float64 `json:"rooms,omitempty" validate:"gte=0,lte=1000"`
	Length   float64 `json:"length,omitempty" validate:"gte=0,lte=100000"`

	// Modifiers
	Complexity string `json:"complexity,omitempty" validate:"omitempty,oneof=simple normal complex"`
	Quality    string `json:"quality,omitempty" validate:"omitempty,oneof=budget standard premium"`
	Region     string `json:"region,omitempty"`
	Season     string `json:"season,omitempty" validate:"omitempty,oneof=spring summer autumn winter"`

	// HourlyRate is the contractor's own rate; zero means use the job's typical rate
	HourlyRate float64 `json:"hourly_rate,omitempty" validate:"gte=0,lte=10000"`

	Draft *Draft `json:"draft,omitempty"`
}

// ConversationText concatenates description and conversation content for pattern scanning
func (r *QuoteRequest) ConversationText() string {
	text := r.Description
	for _, msg := range r.Conversation {
		text += "\n" + msg.Content
	}
	return text
}

// Validate validates the QuoteRequest using the validator.
func (r *QuoteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
