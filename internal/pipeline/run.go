// Package pipeline sequences the quote stages over one request.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/observability"
	"github.com/jonathan/quote-pipeline/internal/pipeline/steps"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// quoteNamespace seeds the deterministic quote IDs
var quoteNamespace = uuid.MustParse("6f1c2a7e-3b9d-5c4e-8a21-7d0e9b6f4c13")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	// AutoFix lets the validation stage synthesize missing mandatory items and retry once
	AutoFix bool

	// Now is the quote date; it selects the ROT rate and stamps the quote.
	// Zero means time.Now.
	Now time.Time

	// CapDeduction limits the ROT/RUT amount to the statutory yearly cap per person
	CapDeduction bool

	Logger     *zap.Logger
	Registry   *jobs.Registry
	Metrics    *observability.Metrics
	OnProgress ProgressCallback
}

// Result is the pipeline output for one request
type Result struct {
	Quote      *types.Quote           `json:"quote"`
	Validation types.ValidationResult `json:"validation"`
	Trace      []string               `json:"trace"`
	Flags      flags.Flags            `json:"flags"`

	// Blocking is set when blocking validation errors remain; the quote must not be sent as final
	Blocking bool `json:"blocking"`
}

// Run executes every stage in order. Only an invalid request or a canceled
// context returns an error; every other failure is healed and annotated in the trace.
// Identical input with identical Options.Now yields an identical result.
func Run(ctx context.Context, req *types.QuoteRequest, opts Options) (*Result, error) {
	started := time.Now()
	if err := ValidateRequest(req); err != nil {
		opts.Metrics.ObserveRejected()
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = jobs.Default()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	id := quoteID(req, opts.Now)
	st := &state{req: req, opts: opts, runID: id}
	logger := opts.Logger.With(zap.String("quote_id", id))

	quote := &types.Quote{}
	completed := map[string]bool{}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline canceled before %s: %w", s.name, err)
		}
		if err := steps.ValidateDependencies(completed, s.name); err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.name, err)
		}

		next, lines := s.run(st, quote)
		quote = next
		st.trace = append(st.trace, lines...)
		completed[s.name] = true

		logger.Debug("stage completed",
			zap.String("stage", s.name),
			zap.Int("trace_lines", len(lines)))
		emitProgress(opts, ProgressEvent{
			Step:     s.name,
			Category: steps.StepRegistry[s.name].Category,
			Message:  stageMessage(s.name, lines),
			RunID:    id,
		})
	}

	quote.ID = id
	quote.CreatedAt = opts.Now
	quote.Assumptions = append([]string{}, st.trace...)
	normalizeSlices(quote)

	result := &Result{
		Quote:      quote,
		Validation: st.validation,
		Trace:      quote.Assumptions,
		Flags:      st.flags,
		Blocking:   !st.validation.Passed,
	}

	opts.Metrics.ObserveQuote(string(st.def.Category), result.Blocking, time.Since(started))
	logger.Info("quote generated",
		zap.String("job_type", quote.JobType),
		zap.Bool("blocking", result.Blocking),
		zap.Float64("customer_pays", quote.Summary.CustomerPays),
		zap.Int("corrections", len(quote.Corrections)))

	emitProgress(opts, ProgressEvent{
		Step:     "completed",
		Category: steps.CategoryFinalize,
		Message:  "Quote completed",
		RunID:    id,
		Content:  quote,
	})
	return result, nil
}

// quoteID derives a stable id from the request and the quote date
func quoteID(req *types.QuoteRequest, now time.Time) string {
	payload, err := json.Marshal(req)
	if err != nil {
		payload = []byte(req.ConversationText())
	}
	payload = append(payload, now.UTC().Format(time.RFC3339Nano)...)
	return uuid.NewSHA1(quoteNamespace, payload).String()
}

// normalizeSlices keeps empty lists as [] in the JSON output
func normalizeSlices(q *types.Quote) {
	if q.WorkItems == nil {
		q.WorkItems = []types.WorkItem{}
	}
	if q.Materials == nil {
		q.Materials = []types.Material{}
	}
	if q.Equipment == nil {
		q.Equipment = []types.Material{}
	}
	if q.ValidationWarnings == nil {
		q.ValidationWarnings = []string{}
	}
}

// emitProgress sends a progress event if a callback is configured
func emitProgress(opts Options, event ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(event)
	}
}

func stageMessage(name string, lines []string) string {
	if len(lines) == 0 {
		return name + " done"
	}
	return fmt.Sprintf("%s done: %s", name, lines[len(lines)-1])
}
