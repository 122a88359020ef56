package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/cli/config"
	"github.com/airlens/airlens/internal/cli/output"
	"github.com/airlens/airlens/internal/dialect"
	"github.com/airlens/airlens/internal/exec"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  adapter.Adapter
	Dialect  *dialect.Dialect
	Runner   *exec.Runner
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a connected database.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutDB(cmd)

	if err := cmdCtx.Cfg.Validate(); err != nil {
		return nil, nil, err
	}

	adapterCfg := cmdCtx.Cfg.AdapterConfig()
	ad, err := adapter.NewAdapter(adapterCfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := ad.Connect(cmd.Context(), adapterCfg); err != nil {
		return nil, nil, err
	}

	d, ok := dialect.Get(ad.DialectName())
	if !ok {
		_ = ad.Close()
		return nil, nil, fmt.Errorf("no SQL dialect registered for driver %q", cmdCtx.Cfg.Driver)
	}

	cmdCtx.Adapter = ad
	cmdCtx.Dialect = d
	cmdCtx.Runner = exec.NewRunner(ad, d, cmdCtx.Logger)

	cleanup := func() {
		_ = ad.Close()
	}

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutDB creates a CommandContext without connecting to
// the database. Useful for commands that only read the catalog.
func NewCommandContextWithoutDB(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	port := config.DefaultPort
	if v := os.Getenv("AIRLENS_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	return &config.Config{
		Driver:     getEnvOrDefault("AIRLENS_DRIVER", config.DefaultDriver),
		DBHost:     getEnvOrDefault("AIRLENS_DB_HOST", config.DefaultHost),
		DBPort:     port,
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBPath:     os.Getenv("AIRLENS_DB_PATH"),
		Table:      getEnvOrDefault("AIRLENS_TABLE", config.DefaultTable),
		Output:     os.Getenv("AIRLENS_OUTPUT"),
		Verbose:    os.Getenv("AIRLENS_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
