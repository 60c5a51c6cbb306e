package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/quote-pipeline/internal/types"
)

// QuoteRecord is a stored quote with its validation outcome
type QuoteRecord struct {
	ID         uuid.UUID               `json:"id"`
	Quote      *types.Quote            `json:"quote"`
	Validation *types.ValidationResult `json:"validation,omitempty"`
	Blocking   bool                    `json:"blocking"`
	StoredAt   time.Time               `json:"stored_at"`
}

// QuoteSummary is a lightweight view of a stored quote for listing
type QuoteSummary struct {
	ID            uuid.UUID `json:"id"`
	JobType       string    `json:"job_type"`
	Category      string    `json:"category"`
	DeductionType string    `json:"deduction_type"`
	TotalWithVAT  float64   `json:"total_with_vat"`
	CustomerPays  float64   `json:"customer_pays"`
	Blocking      bool      `json:"blocking"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuoteFilters holds optional filters for listing quotes
type QuoteFilters struct {
	JobType  string
	Category string
	Blocking *bool
	Limit    int
}
