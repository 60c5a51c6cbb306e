package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/observability"
	"github.com/jonathan/quote-pipeline/internal/pipeline"
	"github.com/jonathan/quote-pipeline/internal/types"
)

var validateCommand = &cobra.Command{
	Use:   "validate",
	Short: "Re-check a finished quote",
	Long: `Validates a quote JSON against the rules of its trade family and reports the summary fields the math guard would correct.

The quote file is never modified. Exits non-zero when the quote has blocking errors.`,
	RunE: runValidateCmd,
}

var (
	validateQuote       string
	validateDescription string
	validateJSON        bool
)

func init() {
	validateCommand.Flags().StringVarP(&validateQuote, "quote", "q", "", "Path to quote JSON")
	validateCommand.Flags().StringVar(&validateDescription, "description", "", "Customer description, scanned for customer-supplied materials")
	validateCommand.Flags().BoolVar(&validateJSON, "json", false, "Print the check result as JSON")

	_ = validateCommand.MarkFlagRequired("quote")

	rootCmd.AddCommand(validateCommand)
}

func runValidateCmd(cmd *cobra.Command, _ []string) error {
	res, err := checkQuoteFile(validateQuote, validateDescription)
	if err != nil {
		return err
	}

	if validateJSON {
		if err := writeJSON(cmd.OutOrStdout(), "", res); err != nil {
			return err
		}
	} else {
		printCheck(cmd.OutOrStdout(), res)
	}

	if res.Blocking() {
		return fmt.Errorf("validation failed: %d blocking error(s)", len(res.Validation.Errors))
	}
	return nil
}

// checkQuoteFile loads a quote and re-checks it with the default registry
func checkQuoteFile(path, description string) (pipeline.CheckResult, error) {
	q, err := readQuote(path)
	if err != nil {
		return pipeline.CheckResult{}, err
	}
	return pipeline.Check(q, description, jobs.Default()), nil
}

func printCheck(out io.Writer, res pipeline.CheckResult) {
	p := observability.NewPrinter(out)
	p.PrintValidation(&res.Validation)
	p.PrintViolations(&types.Violations{Violations: res.Validation.Violations})
	p.PrintCorrections(res.Corrections)
}
