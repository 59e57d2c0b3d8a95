package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nansc/internal/session"
)

// =============================================================================
// SESSION MANAGEMENT COMMANDS
// =============================================================================

var sessionsLimit int

// sessionsCmd manages conversation sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
	Long: `List, show and reset conversation sessions.

Subcommands:
  list   - List all saved sessions
  show   - Print a session's history
  reset  - Delete a session's history`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "Delete a session's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsReset,
}

func init() {
	sessionsShowCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 0, "Show only the last n messages")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsResetCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := session.NewManager(st).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No saved sessions found.")
		return nil
	}

	fmt.Fprintln(out, "Saved Sessions")
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for i, s := range sessions {
		fmt.Fprintf(out, "  %d. %s  %d messages, last active %s\n", i+1, s.ID, s.Messages, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "Total: %d sessions\n", len(sessions))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	history, err := session.NewManager(st).History(ctx, args[0], sessionsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, history)
	}
	if len(history) == 0 {
		return fmt.Errorf("session '%s' not found. Use 'nansc sessions list' to see available sessions", args[0])
	}
	for _, m := range history {
		who := "Operator"
		if m.Role == session.RoleAssistant {
			who = "Assistant"
		}
		fmt.Fprintf(out, "[%s] %s:\n%s\n\n", m.Time.Local().Format("15:04:05"), who, m.Content)
	}
	return nil
}

func runSessionsReset(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	existed, err := session.NewManager(st).Reset(ctx, args[0])
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("session '%s' not found", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' reset.\n", args[0])
	return nil
}
