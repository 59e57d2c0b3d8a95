// Command nansc is the NANSC Operations Console: ICAO airport lookups,
// AFTN→AMHS address conversion and an assistant for AFTN/AMHS operators.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nansc/internal/config"
	"nansc/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration
	jsonOutput bool

	// Logger
	logger *zap.Logger

	// Resolved configuration
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nansc",
	Short: "NANSC Operations Console - ICAO lookups, AFTN→AMHS conversion, operations assistant",
	Long: `nansc is the operations console for AFTN/AMHS operators.

It resolves ICAO location indicators against a local reference table,
converts 8-letter AFTN addresses to AMHS X.400 O/R addresses, answers
procedure questions from ingested manuals and passes everything else to
a Gemini model with the local results attached.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runInteractiveChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.nansc/nansc.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the workspace, loads .env and configuration, and starts
// both loggers.
func setup() error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	workspace = ws

	if err := godotenv.Load(filepath.Join(ws, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	loaded, err := loadConfig(ws)
	if err != nil {
		return err
	}
	cfg = loaded

	logger, err = newLogger(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := logging.Initialize(ws); err != nil {
		logger.Warn("File logging unavailable", zap.Error(err))
	}
	logging.Boot("nansc starting: workspace=%s config=%s", ws, configFile(ws))
	return nil
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

func configFile(ws string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(ws, ".nansc", "nansc.yaml")
}

// loadConfig layers YAML, environment and the user config. Relative
// persistence paths are resolved against the workspace.
func loadConfig(ws string) (*config.Config, error) {
	c, err := config.Load(configFile(ws))
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(c.Persistence.Dir) {
		c.Persistence.Dir = filepath.Join(ws, c.Persistence.Dir)
	}
	if p := c.Persistence.DatabasePath; p != "" && !filepath.IsAbs(p) {
		c.Persistence.DatabasePath = filepath.Join(ws, p)
	}

	user, err := config.LoadUserConfig(config.DefaultUserConfigPath(c.Persistence.Dir))
	if err != nil {
		return nil, err
	}
	user.ApplyTo(c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(lc.Format, "console") {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	level := zapcore.InfoLevel
	if lc.Level != "" {
		if err := level.Set(lc.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// joinArgs joins command arguments into one message.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
