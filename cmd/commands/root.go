// Package commands defines the nag CLI.
package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/nag/internal/config"
)

const version = "0.1.0"

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "nag",
		Usage:   "A personal task-reminder agent",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "tasks",
				Usage: "Path to the task document (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewAgentCommand(),
			NewAskCommand(),
			NewServeCommand(),
			NewTasksCommand(),
			NewStatusCommand(),
		},
	}
}

// setupLogging routes logs to stderr. Protocol traffic owns stdout, so
// every command logs to the error stream.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file named by --config, falling back to
// defaults when it does not exist, and applies the --tasks override.
func loadConfig(cmd *cli.Command) *config.Config {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", path, "error", err)
		cfg = config.Default()
	}
	if p := cmd.String("tasks"); p != "" {
		cfg.Tasks.Path = p
	}
	return cfg
}
