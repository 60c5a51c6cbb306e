package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/db"
	"github.com/jonathan/quote-pipeline/internal/draft"
	"github.com/jonathan/quote-pipeline/internal/pipeline"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// maxListLimit bounds the limit query parameter of GET /quotes
const maxListLimit = 500

// QuoteResponse represents the response for the quote-creating endpoints
type QuoteResponse struct {
	Quote      *types.Quote           `json:"quote"`
	Validation types.ValidationResult `json:"validation"`
	Blocking   bool                   `json:"blocking"`
	Stored     bool                   `json:"stored"`

	// DraftWarnings lists repairs made to a model draft before the pipeline ran
	DraftWarnings []string `json:"draft_warnings,omitempty"`
}

// ValidateRequest represents the request body for /quotes/validate
type ValidateRequest struct {
	Quote       *types.Quote `json:"quote"`
	Description string       `json:"description,omitempty"`
}

// ValidateResponse represents the response for /quotes/validate
type ValidateResponse struct {
	Validation  types.ValidationResult `json:"validation"`
	Corrections []types.Correction     `json:"corrections"`
	Blocking    bool                   `json:"blocking"`
}

// QuoteListResponse represents the response for GET /quotes
type QuoteListResponse struct {
	Quotes []db.QuoteSummary `json:"quotes"`
	Count  int               `json:"count"`
}

// handleCreateQuote runs the pipeline on a request and returns the quote
func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeQuoteRequest(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	opts, err := s.runOptions(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	res, err := pipeline.Run(r.Context(), req, opts)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.respond(r.Context(), res, nil))
}

// handleCreateQuoteStream runs the pipeline and streams stage progress via SSE
func (s *Server) handleCreateQuoteStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeQuoteRequest(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := pipeline.ValidateRequest(req); err != nil {
		s.failure(w, r, err)
		return
	}
	opts, err := s.runOptions(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		// the final event carries the whole quote; the result event below repeats it
		event.Content = nil
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Warn("writing SSE event", zap.Error(err))
		}
	}

	res, err := pipeline.Run(r.Context(), req, opts)
	if err != nil {
		s.logger.Warn("streamed pipeline run failed", zap.Error(err))
		sse.WriteError(err.Error())
		return
	}

	resp := s.respond(r.Context(), res, nil)
	if err := sse.WriteEvent("result", resp); err != nil {
		s.logger.Warn("writing SSE result", zap.Error(err))
		return
	}
	sse.WriteComplete(res.Quote.ID, quoteStatus(res.Blocking))
}

// handleDraftQuote asks the model for a draft and runs the pipeline over it
func (s *Server) handleDraftQuote(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "draft generation"})
		return
	}
	req, err := s.decodeQuoteRequest(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := pipeline.ValidateRequest(req); err != nil {
		s.failure(w, r, err)
		return
	}
	opts, err := s.runOptions(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.draftTimeout)
	defer cancel()
	raw, err := s.drafts.Generate(ctx, req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	parsed, err := draft.Parse(raw)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	req.Draft = parsed.Draft

	res, err := pipeline.Run(r.Context(), req, opts)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.respond(r.Context(), res, parsed.Warnings))
}

// handleValidateQuote re-checks a finished quote against its family rules
func (s *Server) handleValidateQuote(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if err := s.decode(w, r, &body); err != nil {
		s.failure(w, r, err)
		return
	}
	if body.Quote == nil {
		s.failure(w, r, &ErrValidation{Field: "quote", Message: "is required"})
		return
	}

	res := pipeline.Check(body.Quote, body.Description, s.registry)
	s.jsonResponse(w, http.StatusOK, ValidateResponse{
		Validation:  res.Validation,
		Corrections: res.Corrections,
		Blocking:    res.Blocking(),
	})
}

// handleGetQuote returns a stored quote
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "quote storage"})
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	record, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if record == nil {
		s.failure(w, r, &ErrQuoteNotFound{ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleListQuotes lists stored quotes, newest first
func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "quote storage"})
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	quotes, err := s.store.ListQuotes(r.Context(), filters)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if quotes == nil {
		quotes = []db.QuoteSummary{}
	}
	s.jsonResponse(w, http.StatusOK, QuoteListResponse{Quotes: quotes, Count: len(quotes)})
}

// handleDeleteQuote deletes a stored quote
func (s *Server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "quote storage"})
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.store.DeleteQuote(r.Context(), id); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond stores the quote when storage is configured and builds the response
func (s *Server) respond(ctx context.Context, res *pipeline.Result, draftWarnings []string) QuoteResponse {
	resp := QuoteResponse{
		Quote:         res.Quote,
		Validation:    res.Validation,
		Blocking:      res.Blocking,
		DraftWarnings: draftWarnings,
	}
	if s.store == nil {
		return resp
	}
	validation := res.Validation
	if _, err := s.store.SaveQuote(ctx, res.Quote, &validation); err != nil {
		s.logger.Warn("storing quote failed", zap.String("quote_id", res.Quote.ID), zap.Error(err))
		return resp
	}
	resp.Stored = true
	return resp
}

func (s *Server) decodeQuoteRequest(w http.ResponseWriter, r *http.Request) (*types.QuoteRequest, error) {
	var req types.QuoteRequest
	if err := s.decode(w, r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// runOptions reads the autofix, cap_deduction and date query parameters
func (s *Server) runOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		AutoFix:      s.autoFix,
		CapDeduction: s.capDeduction,
		Now:          s.now(),
		Logger:       s.logger,
		Registry:     s.registry,
		Metrics:      s.metrics,
	}
	query := r.URL.Query()
	if v := query.Get("autofix"); v != "" {
		autoFix, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "autofix", Message: "must be a boolean"}
		}
		opts.AutoFix = autoFix
	}
	if v := query.Get("cap_deduction"); v != "" {
		capped, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "cap_deduction", Message: "must be a boolean"}
		}
		opts.CapDeduction = capped
	}
	if v := query.Get("date"); v != "" {
		date, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return opts, &ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		opts.Now = date
	}
	return opts, nil
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

func parseFilters(r *http.Request) (db.QuoteFilters, error) {
	query := r.URL.Query()
	filters := db.QuoteFilters{
		JobType:  query.Get("job_type"),
		Category: query.Get("category"),
	}
	if v := query.Get("blocking"); v != "" {
		blocking, err := strconv.ParseBool(v)
		if err != nil {
			return filters, &ErrValidation{Field: "blocking", Message: "must be a boolean"}
		}
		filters.Blocking = &blocking
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxListLimit {
			return filters, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"}
		}
		filters.Limit = limit
	}
	return filters, nil
}

func quoteStatus(blocking bool) string {
	if blocking {
		return "blocked"
	}
	return "final"
}
