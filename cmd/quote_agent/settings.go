package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/quote-pipeline/internal/config"
	"github.com/jonathan/quote-pipeline/internal/draft"
	"github.com/jonathan/quote-pipeline/internal/schemas"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// defaultSettings fill whatever neither the config file, the flags nor the environment set
var defaultSettings = config.Config{
	LogLevel:     "info",
	LogFormat:    "console",
	DraftTimeout: 60,
	Addr:         ":8080",
	Concurrency:  4,
}

// loadSettings reads and validates the optional config file
func loadSettings(path string) (config.Config, error) {
	var cfg config.Config
	if path == "" {
		return cfg, nil
	}
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}
	return *loaded, nil
}

// finishSettings applies the environment and the defaults after flag overrides
func finishSettings(cfg config.Config) config.Config {
	cfg.FromEnv()
	return cfg.MergeWithDefaults(defaultSettings)
}

// applyRequestDefaults fills pricing fields the request leaves unset from the config
func applyRequestDefaults(req *types.QuoteRequest, cfg config.Config) {
	if req.HourlyRate == 0 {
		req.HourlyRate = cfg.HourlyRate
	}
	if req.Region == "" {
		req.Region = cfg.Region
	}
	if req.Quality == "" {
		req.Quality = cfg.Quality
	}
}

// readRequest loads a quote request from a JSON file
func readRequest(path string) (*types.QuoteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %s: %w", path, err)
	}
	var req types.QuoteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request JSON %s: %w", path, err)
	}
	return &req, nil
}

// readQuote loads a finished quote from a JSON file after checking it against the quote schema
func readQuote(path string) (*types.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote file %s: %w", path, err)
	}
	if err := schemas.ValidateQuote(string(data)); err != nil {
		return nil, fmt.Errorf("quote file %s does not match the quote schema: %w", path, err)
	}
	var q types.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse quote JSON %s: %w", path, err)
	}
	return &q, nil
}

// readDraft parses raw model output saved to a file
func readDraft(path string) (*draft.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file %s: %w", path, err)
	}
	return draft.Parse(string(data))
}

// parseDate reads a YYYY-MM-DD quote date; empty means now
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: must be YYYY-MM-DD", s)
	}
	return d, nil
}

// writeJSON writes v indented to path, or to out when path is empty
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
