package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nansc/internal/session"
)

var askSession string

// askCmd runs a single assistant turn
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message to the operations assistant",
	Long: `Runs one assistant turn: ICAO codes and AFTN addresses in the message are
resolved locally, manuals are consulted for procedure questions and the
result is passed to the model. Without an API key the local results are
printed in degraded mode.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session id (default: a new session)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	id := askSession
	if id == "" {
		id = session.NewID()
	}
	if !session.ValidID(id) {
		return fmt.Errorf("invalid session id %q", id)
	}

	reply := a.assistant.Process(ctx, id, joinArgs(args))
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, reply)
	}
	fmt.Fprintln(out, reply.Text)
	if askSession == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nsession: %s\n", reply.SessionID)
	}
	return nil
}
