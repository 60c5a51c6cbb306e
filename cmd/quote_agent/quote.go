package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/config"
	"github.com/jonathan/quote-pipeline/internal/draft"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/llm"
	"github.com/jonathan/quote-pipeline/internal/observability"
	"github.com/jonathan/quote-pipeline/internal/pipeline"
	"github.com/jonathan/quote-pipeline/internal/types"
)

var quoteCommand = &cobra.Command{
	Use:   "quote",
	Short: "Build a quote from a request file",
	Long: `Runs the full quote pipeline on a JSON request: job detection, pricing, merge of an optional draft, deduction, validation and the math guard.

A draft can be read from a file holding raw model output (--draft) or generated with Gemini (--generate).
Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runQuoteCmd,
}

var (
	quoteConfigPath string
	quoteRequest    string
	quoteDraft      string
	quoteGenerate   bool
	quoteAutoFix    bool
	quoteCap        bool
	quoteDate       string
	quoteOut        string
	quoteStrict     bool
	quoteVerbose    bool
	quoteLogLevel   string
	quoteAPIKey     string
)

func init() {
	quoteCommand.Flags().StringVar(&quoteConfigPath, "config", "", "Path to config file (values can be overridden by other flags)")
	quoteCommand.Flags().StringVarP(&quoteRequest, "request", "r", "", "Path to quote request JSON")
	quoteCommand.Flags().StringVarP(&quoteDraft, "draft", "d", "", "Path to raw model draft output (mutually exclusive with --generate)")
	quoteCommand.Flags().BoolVar(&quoteGenerate, "generate", false, "Generate a draft with Gemini before pricing")
	quoteCommand.Flags().BoolVar(&quoteAutoFix, "autofix", false, "Add missing mandatory items and re-validate once")
	quoteCommand.Flags().BoolVar(&quoteCap, "cap-deduction", false, "Limit the ROT/RUT deduction to the statutory yearly cap")
	quoteCommand.Flags().StringVar(&quoteDate, "date", "", "Quote date as YYYY-MM-DD (defaults to today)")
	quoteCommand.Flags().StringVarP(&quoteOut, "out", "o", "", "Output file (defaults to stdout)")
	quoteCommand.Flags().BoolVar(&quoteStrict, "strict", false, "Exit non-zero when the quote has blocking errors")
	quoteCommand.Flags().BoolVarP(&quoteVerbose, "verbose", "v", false, "Print the quote breakdown to stderr")
	quoteCommand.Flags().StringVar(&quoteLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	quoteCommand.Flags().StringVar(&quoteAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	_ = quoteCommand.MarkFlagRequired("request")

	rootCmd.AddCommand(quoteCommand)
}

// quoteInput describes one quote to build
type quoteInput struct {
	RequestPath string
	DraftPath   string
	Generate    bool
	AutoFix     bool
	Now         time.Time
}

// quoteOutput is the pipeline result plus the repairs made to its draft
type quoteOutput struct {
	*pipeline.Result
	DraftWarnings []string `json:"draft_warnings,omitempty"`
}

func runQuoteCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(quoteConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("autofix") {
		cfg.AutoFix = quoteAutoFix
	}
	if cmd.Flags().Changed("cap-deduction") {
		cfg.CapDeduction = quoteCap
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = quoteVerbose
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = quoteLogLevel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = quoteAPIKey
	}
	cfg = finishSettings(cfg)

	now, err := parseDate(quoteDate)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	out, err := produceQuote(cmd.Context(), quoteInput{
		RequestPath: quoteRequest,
		DraftPath:   quoteDraft,
		Generate:    quoteGenerate,
		AutoFix:     cfg.AutoFix,
		Now:         now,
	}, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printResult(observability.NewPrinter(cmd.ErrOrStderr()), out)
	}
	if err := writeJSON(cmd.OutOrStdout(), quoteOut, out); err != nil {
		return err
	}
	if quoteStrict && out.Blocking {
		return fmt.Errorf("quote %s has blocking validation errors", out.Quote.ID)
	}
	return nil
}

// produceQuote reads the request, attaches a draft when asked and runs the pipeline
func produceQuote(ctx context.Context, in quoteInput, cfg config.Config, logger *zap.Logger) (*quoteOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if in.DraftPath != "" && in.Generate {
		return nil, fmt.Errorf("--draft and --generate are mutually exclusive; provide only one")
	}

	req, err := readRequest(in.RequestPath)
	if err != nil {
		return nil, err
	}
	applyRequestDefaults(req, cfg)

	var parsed *draft.Result
	switch {
	case in.DraftPath != "":
		parsed, err = readDraft(in.DraftPath)
		if err != nil {
			return nil, err
		}
	case in.Generate:
		if err := pipeline.ValidateRequest(req); err != nil {
			return nil, err
		}
		parsed, err = generateDraft(ctx, cfg, req)
		if err != nil {
			return nil, err
		}
	}

	out := &quoteOutput{}
	if parsed != nil {
		req.Draft = parsed.Draft
		out.DraftWarnings = parsed.Warnings
		for _, w := range parsed.Warnings {
			logger.Debug("draft repaired", zap.String("warning", w))
		}
	}

	res, err := pipeline.Run(ctx, req, pipeline.Options{
		AutoFix:      in.AutoFix,
		Now:          in.Now,
		CapDeduction: cfg.CapDeduction,
		Logger:       logger,
		Registry:     jobs.Default(),
	})
	if err != nil {
		return nil, err
	}
	out.Result = res
	return out, nil
}

// generateDraft asks Gemini for a draft and parses it
func generateDraft(ctx context.Context, cfg config.Config, req *types.QuoteRequest) (*draft.Result, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required for --generate")
	}
	client, err := llm.NewClient(ctx, llm.ConfigFromEnv(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DraftTimeout)*time.Second)
	defer cancel()

	raw, err := llm.NewDraftGenerator(client).Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return draft.Parse(raw)
}

func printResult(p *observability.Printer, out *quoteOutput) {
	p.PrintQuoteSummary(out.Quote)
	p.PrintLineItems(out.Quote)
	p.PrintValidation(&out.Validation)
	p.PrintViolations(&types.Violations{Violations: out.Validation.Violations})
	p.PrintCorrections(out.Quote.Corrections)
	p.PrintTrace(out.Trace)
}
