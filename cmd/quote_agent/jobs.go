package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/quote-pipeline/internal/jobs"
)

var jobsCommand = &cobra.Command{
	Use:   "jobs [job_type]",
	Short: "List the job catalog",
	Long:  `Lists every known job type with its unit and hourly rate range, or prints one full job definition as JSON.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJobsCmd,
}

var jobsJSON bool

func init() {
	jobsCommand.Flags().BoolVar(&jobsJSON, "json", false, "Print full definitions as JSON")
	rootCmd.AddCommand(jobsCommand)
}

func runJobsCmd(cmd *cobra.Command, args []string) error {
	registry := jobs.Default()
	if len(args) == 1 {
		def, ok := registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown job type %q", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), "", def)
	}
	if jobsJSON {
		return writeJSON(cmd.OutOrStdout(), "", registry.All())
	}
	return printJobs(cmd.OutOrStdout(), registry.All())
}

func printJobs(out io.Writer, defs []jobs.JobDefinition) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB TYPE\tCATEGORY\tUNIT\tRATE (KR/H)\tDEDUCTION")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f-%.0f\t%s\n",
			d.JobType, d.Category, d.UnitType, d.HourlyRate.Min, d.HourlyRate.Max, d.Deduction)
	}
	return tw.Flush()
}
