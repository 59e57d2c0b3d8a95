package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nansc/internal/dispatch"
	"nansc/internal/search"
)

var (
	resolveWeb bool
	batchOp    string
	batchWeb   bool
)

// resolveCmd looks up ICAO codes and converts AFTN addresses without the model
var resolveCmd = &cobra.Command{
	Use:   "resolve <code>...",
	Short: "Resolve ICAO codes or convert AFTN addresses locally",
	Long: `Each argument is handled on its own: 8-letter tokens are converted from
AFTN to AMHS, anything else is looked up as an ICAO code. Use --web to
search the web for codes missing from the local table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

// batchCmd processes a file of codes, one per line
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Look up or convert one item per line",
	Long: `Reads items one per line from a file, or stdin when no file is given.
Blank lines are skipped; lines are trimmed and upper-cased. With --op lookup,
--web searches the web for codes missing from the local table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

// airportsCmd lists the reference table
var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "List the airports in the local reference table",
	Args:  cobra.NoArgs,
	RunE:  runAirports,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveWeb, "web", false, "Search the web for codes not in the local table")
	batchCmd.Flags().StringVar(&batchOp, "op", "lookup", "Operation: lookup or convert")
	batchCmd.Flags().BoolVar(&batchWeb, "web", false, "Search the web for codes not in the local table")
	rootCmd.AddCommand(resolveCmd, batchCmd, airportsCmd)
}

// resolvedItem is the JSON shape of one resolve or batch result.
type resolvedItem struct {
	dispatch.Result
	Fallback *search.Fallback `json:"fallback,omitempty"`
}

// Summary prefers the web fallback text when there is one.
func (i resolvedItem) Summary() string {
	if i.Fallback != nil {
		return i.Fallback.Message
	}
	return i.Result.Summary()
}

// Line renders the item like dispatch.Result.Line.
func (i resolvedItem) Line() string {
	return i.LineWith(i.Summary())
}

// webSearcher returns the configured searcher when web is set, or an error
// when search is disabled.
func webSearcher(web bool) (search.Searcher, error) {
	if !web {
		return nil, nil
	}
	s := newSearcher(cfg)
	if s == nil {
		return nil, fmt.Errorf("web search is disabled in the configuration")
	}
	return s, nil
}

// withFallbacks wraps results, searching the web for every Miss when
// searcher is set.
func withFallbacks(ctx context.Context, searcher search.Searcher, results []dispatch.Result) []resolvedItem {
	items := make([]resolvedItem, 0, len(results))
	for _, res := range results {
		item := resolvedItem{Result: res}
		if searcher != nil && res.Outcome == dispatch.OutcomeMiss {
			fb := search.AirportFallback(ctx, searcher, res.Token, cfg.Search.MaxResultChars)
			item.Fallback = &fb
		}
		items = append(items, item)
	}
	return items
}

func runResolve(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	searcher, err := webSearcher(resolveWeb)
	if err != nil {
		return err
	}

	results := make([]dispatch.Result, 0, len(args))
	for _, arg := range args {
		token := strings.ToUpper(strings.TrimSpace(arg))
		if len(token) == 8 {
			results = append(results, dispatch.Convert(token))
		} else {
			results = append(results, coord.Lookup(token))
		}
	}
	items := withFallbacks(ctx, searcher, results)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	for _, item := range items {
		fmt.Fprintln(out, item.Line())
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	op, err := dispatch.ParseOperation(batchOp)
	if err != nil {
		return err
	}
	coord, err := newCoordinator(cfg)
	if err != nil {
		return err
	}
	searcher, err := webSearcher(batchWeb)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		return err
	}
	items := withFallbacks(ctx, searcher, coord.Batch(lines, op))

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No items to process.")
		return nil
	}
	table := newResultTable(items)
	fmt.Fprintln(out, table.View())
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func runAirports(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator(cfg)
	if err != nil {
		return err
	}
	table := coord.Table()

	out := cmd.OutOrStdout()
	codes := table.Codes()
	if jsonOutput {
		records := make([]any, 0, len(codes))
		for _, code := range codes {
			rec, _ := table.Resolve(code)
			records = append(records, rec)
		}
		return printJSON(out, records)
	}

	t := newAirportTable()
	for _, code := range codes {
		rec, _ := table.Resolve(code)
		t.AddRow(rec.ICAO, rec.Name, rec.City, rec.Country)
	}
	fmt.Fprintln(out, t.View())
	fmt.Fprintf(out, "%d airports\n", table.Len())
	return nil
}
