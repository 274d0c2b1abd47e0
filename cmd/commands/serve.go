package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/nag/internal/rpc"
	"github.com/dohr-michael/nag/internal/tasks"
	"github.com/dohr-michael/nag/internal/tools"
)

// NewServeCommand returns the serve subcommand: the tool server side of
// the stdio channel, normally spawned by `nag agent` or `nag ask`.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the task tool server on stdio",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol; logs must stay on stderr.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := loadConfig(cmd)

	store := tasks.NewStore(cfg.Tasks.Path)
	dispatcher := tools.NewDispatcher(store)

	srv := rpc.NewServer(rpc.PeerInfo{Name: "nag", Version: version})
	tools.Register(srv, dispatcher)

	slog.Debug("tool server starting", "tasks", cfg.Tasks.Path)
	return srv.Run(ctx, os.Stdin, os.Stdout)
}
