// Package observability provides logging, metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/quote-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-fills s with spaces to width runes; %-*s counts bytes
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func kr(v float64) string {
	return fmt.Sprintf("%.0f kr", v)
}

// PrintQuoteSummary outputs the totals of a quote
func (p *Printer) PrintQuoteSummary(q *types.Quote) {
	if q == nil {
		return
	}

	s := q.Summary
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:          %s (%g %s)\n", q.JobType, q.UnitQty, q.Unit))
	sb.WriteString(fmt.Sprintf("Work:         %s (%.1f h)\n", kr(s.WorkCost), q.TotalHours()))
	sb.WriteString(fmt.Sprintf("Materials:    %s\n", kr(s.MaterialCost)))
	if s.EquipmentCost > 0 {
		sb.WriteString(fmt.Sprintf("Equipment:    %s\n", kr(s.EquipmentCost)))
	}
	sb.WriteString(fmt.Sprintf("Before VAT:   %s\n", kr(s.TotalBeforeVAT)))
	sb.WriteString(fmt.Sprintf("VAT 25%%:      %s\n", kr(s.VAT)))
	sb.WriteString(fmt.Sprintf("Total:        %s\n", kr(s.TotalWithVAT)))
	if s.DeductionAmount > 0 {
		sb.WriteString(fmt.Sprintf("%s %.0f%%:      -%s\n", q.DeductionType, q.DeductionRate*100, kr(s.DeductionAmount)))
	}
	sb.WriteString(fmt.Sprintf("Customer pays: %s", kr(s.CustomerPays)))

	p.printBox("QUOTE SUMMARY", sb.String())
}

// PrintLineItems outputs the work items and the first materials of a quote
func (p *Printer) PrintLineItems(q *types.Quote) {
	if q == nil || len(q.WorkItems)+len(q.Materials) == 0 {
		return
	}

	var sb strings.Builder
	if len(q.WorkItems) > 0 {
		sb.WriteString("Work:\n")
		for _, item := range q.WorkItems {
			sb.WriteString(fmt.Sprintf("  • %s  %.1f h × %.0f = %s\n", item.Name, item.Hours, item.HourlyRate, kr(item.Subtotal)))
		}
	}
	if len(q.Materials) > 0 {
		sb.WriteString("Materials:\n")
		count := min(len(q.Materials), maxItemsToShow)
		for i := 0; i < count; i++ {
			m := q.Materials[i]
			sb.WriteString(fmt.Sprintf("  • %s  %g %s = %s\n", m.Name, m.Quantity, m.Unit, kr(m.Subtotal)))
		}
		if len(q.Materials) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(q.Materials)-maxItemsToShow))
		}
	}

	p.printBox("LINE ITEMS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the outcome of a trade-family validation
func (p *Printer) PrintValidation(res *types.ValidationResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	status := "✅ PASSED"
	if !res.Passed {
		status = "⛔ BLOCKED"
	}
	sb.WriteString(fmt.Sprintf("Family: %s  %s\n", res.Family, status))

	if len(res.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range res.Errors {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", e))
		}
	}
	if len(res.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		count := min(len(res.Warnings), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", res.Warnings[i]))
		}
		if len(res.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(res.Warnings)-maxItemsToShow))
		}
	}
	if fix := res.AutoFix; fix != nil && len(fix.AddedItems) > 0 {
		sb.WriteString(fmt.Sprintf("\nAuto-fix added: %s\n", strings.Join(fix.AddedItems, ", ")))
	}

	p.printBox("VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCorrections outputs the values the math guard overwrote.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCorrections(corrections []types.Correction) {
	if len(corrections) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ ARITHMETIC CONSISTENT", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Corrected %d values:\n\n", len(corrections)))
	for _, c := range corrections {
		sb.WriteString(fmt.Sprintf("%s\n", c.Field))
		sb.WriteString(fmt.Sprintf("  %.2f → %.2f (%.2f%%)\n", c.Before, c.After, c.DriftPercent))
	}

	p.printBox("MATH GUARD CORRECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs any business-rule violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations == nil || len(violations.Violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ NO VIOLATIONS FOUND", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations.Violations)))

	for i, v := range violations.Violations {
		marker := "⚠"
		if v.Blocking() {
			marker = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, v.Type))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(v.Details, 45)))
		if i < len(violations.Violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CONSTRAINT VIOLATIONS", sb.String())
}

// PrintTrace outputs the assumptions log line by line
func (p *Printer) PrintTrace(trace []string) {
	if len(trace) == 0 {
		return
	}

	var sb strings.Builder
	for i, line := range trace {
		sb.WriteString(fmt.Sprintf("%2d. %s", i+1, line))
		if i < len(trace)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("ASSUMPTIONS", sb.String())
}
