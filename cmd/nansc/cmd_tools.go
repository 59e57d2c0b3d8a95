package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nansc/internal/intent"
	"nansc/internal/telemetry"
	"nansc/internal/tools"
)

var toolsFor string

// toolsCmd lists the tools offered to the model
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the assistant can call",
	Long: `Lists the registered tools. With --for, only the tools relevant to the
codes detected in the given message are shown.`,
	Args: cobra.NoArgs,
	RunE: runToolsList,
}

// toolsRunCmd executes one tool directly
var toolsRunCmd = &cobra.Command{
	Use:   "run <tool> [key=value]...",
	Short: "Execute a tool directly",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runToolsRun,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsFor, "for", "", "Only list tools relevant to this message")
	toolsCmd.AddCommand(toolsRunCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.registry.All()
	if toolsFor != "" {
		list = a.registry.ForCandidates(intent.Detect(toolsFor))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		type toolInfo struct {
			Name        string             `json:"name"`
			Category    tools.ToolCategory `json:"category"`
			Description string             `json:"description"`
			Schema      tools.ToolSchema   `json:"schema"`
		}
		infos := make([]toolInfo, len(list))
		for i, t := range list {
			infos[i] = toolInfo{Name: t.Name, Category: t.Category, Description: t.Description, Schema: t.Schema}
		}
		return printJSON(out, infos)
	}

	for _, t := range list {
		fmt.Fprintf(out, "%-16s %-12s %s\n", t.Name, t.Category, t.Description)
	}
	return nil
}

// parseToolArgs turns key=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid argument %q (want key=value)", p)
		}
		args[strings.TrimSpace(k)] = v
	}
	return args, nil
}

func runToolsRun(cmd *cobra.Command, args []string) error {
	toolArgs, err := parseToolArgs(args[1:])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = telemetry.NewContext(ctx, a.telemetry)
	res, err := a.registry.Execute(ctx, args[0], toolArgs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintln(out, res.Result)
	return nil
}
