package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"nansc/internal/telemetry"
	"nansc/internal/usage"
)

var statsEvents int

// statsCmd shows persisted telemetry
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request, tool-use and error counters with recent events",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsEvents, "events", "n", telemetry.DefaultLogLines, "Number of recent events to show")
	rootCmd.AddCommand(statsCmd)
}

// statsReport is the JSON shape of `nansc stats`.
type statsReport struct {
	Metrics telemetry.Metrics     `json:"metrics"`
	Events  []telemetry.Event     `json:"events"`
	Tables  map[string]int64      `json:"tables"`
	Tokens  usage.AggregatedStats `json:"tokens"`
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.EventCounts(ctx)
	if err != nil {
		return err
	}
	recent, err := st.RecentEvents(ctx, statsEvents)
	if err != nil {
		return err
	}
	tables, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	tracker, err := usage.NewTracker(cfg.Persistence.Dir)
	if err != nil {
		return err
	}
	report := statsReport{
		Metrics: telemetry.MetricsFromCounts(counts),
		Events:  telemetry.FromStore(recent),
		Tables:  tables,
		Tokens:  tracker.Stats(),
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}

	fmt.Fprintln(out, "System Metrics")
	fmt.Fprintf(out, "  Requests:    %d\n", report.Metrics.Requests)
	fmt.Fprintf(out, "  Tool usage:  %d\n", report.Metrics.ToolUsage)
	fmt.Fprintf(out, "  Errors:      %d\n", report.Metrics.Errors)

	fmt.Fprintln(out, "\nStorage")
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-18s %d\n", name, tables[name])
	}

	fmt.Fprintln(out, "\nToken Usage")
	fmt.Fprintf(out, "  Model calls: %d\n", report.Tokens.Requests)
	fmt.Fprintf(out, "  Input:       %d\n", report.Tokens.Total.Input)
	fmt.Fprintf(out, "  Output:      %d\n", report.Tokens.Total.Output)
	ops := make([]string, 0, len(report.Tokens.ByOperation))
	for op := range report.Tokens.ByOperation {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(out, "  %-12s %d tokens\n", op+":", report.Tokens.ByOperation[op].Total)
	}

	fmt.Fprintln(out, "\nRecent Events")
	if len(report.Events) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}
	fmt.Fprintln(out, telemetry.FormatEvents(report.Events))
	return nil
}
