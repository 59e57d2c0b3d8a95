package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nansc/internal/knowledge"
)

// =============================================================================
// KNOWLEDGE BASE COMMANDS
// =============================================================================

var (
	kbReingest bool
	kbDebounce time.Duration
)

// kbCmd groups the knowledge-base commands
var kbCmd = &cobra.Command{
	Use:     "kb",
	Aliases: []string{"knowledge"},
	Short:   "Manage the manuals knowledge base",
	Long: `Ingest operational manuals and query them.

Subcommands:
  ingest   - Ingest files or directories (.pdf, .md, .txt)
  query    - Show the excerpts that answer a question
  watch    - Re-ingest documents as they change
  sources  - List ingested documents`,
	RunE: runKnowledgeSources,
}

var kbIngestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledgeIngest,
}

var kbQueryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Query the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledgeQuery,
}

var kbWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and re-ingest changed documents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKnowledgeWatch,
}

var kbSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeSources,
}

func init() {
	kbIngestCmd.Flags().BoolVar(&kbReingest, "reingest", false, "Replace chunks previously ingested from the same file")
	kbWatchCmd.Flags().DurationVar(&kbDebounce, "debounce", 500*time.Millisecond, "Delay before re-ingesting a changed file")
	kbCmd.AddCommand(kbIngestCmd, kbQueryCmd, kbWatchCmd, kbSourcesCmd)
	rootCmd.AddCommand(kbCmd)
}

// collectDocuments expands directories into the supported files they contain.
func collectDocuments(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && knowledge.Supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func runKnowledgeIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	files, err := collectDocuments(args)
	if err != nil {
		return fmt.Errorf("failed to collect documents: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var failed int
	for _, f := range files {
		var res knowledge.IngestResult
		if kbReingest {
			res, err = a.kb.Reingest(ctx, f)
		} else {
			res, err = a.kb.Ingest(ctx, f)
		}
		if err != nil {
			failed++
			logger.Warn("Ingestion failed", zap.String("file", f), zap.Error(err))
			fmt.Fprintf(out, "✗ %s: %v\n", f, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s: %d chunks (%d new, %d already stored)\n", res.Source, res.Chunks, res.Stored, res.Skipped)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest", failed, len(files))
	}
	return nil
}

func runKnowledgeQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	question := joinArgs(args)
	out := cmd.OutOrStdout()
	if jsonOutput {
		hits, err := a.kb.Search(ctx, question)
		if err != nil {
			return err
		}
		return printJSON(out, hits)
	}

	answer, err := a.kb.Query(ctx, question)
	if err != nil {
		return err
	}
	if answer == "" {
		fmt.Fprintln(out, "No matching excerpts.")
		return nil
	}
	fmt.Fprintln(out, answer)
	return nil
}

func runKnowledgeWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.watchDir()
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dir)
	w := knowledge.NewWatcher(a.kb, dir, kbDebounce, func(res knowledge.IngestResult, err error) {
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", res.Source, err)
			return
		}
		fmt.Fprintf(out, "✓ %s: %d chunks (%d new)\n", res.Source, res.Chunks, res.Stored)
	})
	return w.Run(ctx)
}

func runKnowledgeSources(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.store.ListSources(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, sources)
	}
	if len(sources) == 0 {
		fmt.Fprintln(out, "No documents ingested. Use: nansc kb ingest <path>")
		return nil
	}
	for _, s := range sources {
		fmt.Fprintf(out, "  %-40s %d chunks\n", s.Source, s.Chunks)
	}
	mode := "keyword"
	if a.kb.Semantic() {
		mode = "semantic"
	}
	fmt.Fprintf(out, "Total: %d documents (%s retrieval)\n", len(sources), mode)
	return nil
}
