package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/quote-pipeline/internal/types"
)

// DefaultListLimit caps ListQuotes when no limit is given
const DefaultListLimit = 50

// ErrNotFound is returned by DeleteQuote when no row has the id
var ErrNotFound = errors.New("quote not found")

// SaveQuote stores a finalized quote. Saving the same quote id again replaces it,
// so retried pipeline runs are safe to persist.
func (db *DB) SaveQuote(ctx context.Context, q *types.Quote, validation *types.ValidationResult) (uuid.UUID, error) {
	if q == nil {
		return uuid.Nil, fmt.Errorf("quote is nil")
	}
	id, err := uuid.Parse(q.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid quote id %q: %w", q.ID, err)
	}

	content, err := json.Marshal(q)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal quote: %w", err)
	}
	var validationJSON []byte
	blocking := false
	if validation != nil {
		blocking = !validation.Passed
		if validationJSON, err = json.Marshal(validation); err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal validation: %w", err)
		}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO quotes (id, job_type, category, deduction_type, total_with_vat, customer_pays, blocking, content, validation, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   job_type = $2, category = $3, deduction_type = $4, total_with_vat = $5,
		   customer_pays = $6, blocking = $7, content = $8, validation = $9, stored_at = NOW()`,
		id, q.JobType, q.Category, q.DeductionType, q.Summary.TotalWithVAT, q.Summary.CustomerPays,
		blocking, content, validationJSON, q.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save quote %s: %w", id, err)
	}
	return id, nil
}

// GetQuote retrieves a stored quote by id. A missing quote returns nil, nil.
func (db *DB) GetQuote(ctx context.Context, id uuid.UUID) (*QuoteRecord, error) {
	record := QuoteRecord{ID: id}
	var content, validationJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT content, validation, blocking, stored_at FROM quotes WHERE id = $1`,
		id,
	).Scan(&content, &validationJSON, &record.Blocking, &record.StoredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := json.Unmarshal(content, &record.Quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote %s: %w", id, err)
	}
	if len(validationJSON) > 0 {
		if err := json.Unmarshal(validationJSON, &record.Validation); err != nil {
			return nil, fmt.Errorf("failed to decode validation %s: %w", id, err)
		}
	}
	return &record, nil
}

// ListQuotes retrieves quote summaries with optional filters, newest first
func (db *DB) ListQuotes(ctx context.Context, filters QuoteFilters) ([]QuoteSummary, error) {
	query, args := buildListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []QuoteSummary
	for rows.Next() {
		var s QuoteSummary
		if err := rows.Scan(&s.ID, &s.JobType, &s.Category, &s.DeductionType, &s.TotalWithVAT, &s.CustomerPays, &s.Blocking, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

// DeleteQuote deletes a stored quote
func (db *DB) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func buildListQuery(filters QuoteFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT id, job_type, category, deduction_type, total_with_vat::float8, customer_pays::float8, blocking, created_at
		FROM quotes WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.JobType != "" {
		query += fmt.Sprintf(" AND job_type = $%d", argNum)
		args = append(args, filters.JobType)
		argNum++
	}
	if filters.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}
	if filters.Blocking != nil {
		query += fmt.Sprintf(" AND blocking = $%d", argNum)
		args = append(args, *filters.Blocking)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}
