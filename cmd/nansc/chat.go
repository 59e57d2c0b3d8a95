package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nansc/cmd/nansc/chat"
	"nansc/cmd/nansc/ui"
	"nansc/internal/config"
)

var chatSession string

func init() {
	rootCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Resume a session in the chat interface")
}

// chatStyles picks the theme named in the user config, else the detected one.
func chatStyles(c *config.Config) ui.Styles {
	user, err := config.LoadUserConfig(config.DefaultUserConfigPath(c.Persistence.Dir))
	if err != nil || user.Theme == "" {
		return ui.DefaultStyles()
	}
	return ui.NewStyles(ui.ThemeByName(user.Theme))
}

func runInteractiveChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Debug("Starting chat", zap.Bool("degraded", a.assistant.Degraded()))
	return chat.Run(chat.Config{
		Assistant: a.assistant,
		Sessions:  a.sessions,
		SessionID: chatSession,
		Styles:    chatStyles(cfg),
		Timeout:   timeout,
	})
}
