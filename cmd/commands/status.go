package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/nag/internal/config"
	"github.com/dohr-michael/nag/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Report whether the reminder agent is running",
		Action: runStatus,
	}
}

func runStatus(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd.Bool("debug"))

	status, hb, err := heartbeat.Check(config.HeartbeatPath(), 2*time.Minute)
	if err != nil {
		return err
	}

	switch status {
	case heartbeat.StatusAlive:
		fmt.Printf("agent: alive (pid %d, up %s, schedule %q)\n", hb.PID, hb.Uptime, hb.Schedule)
	case heartbeat.StatusStale:
		fmt.Printf("agent: stale (last heartbeat %s)\n", hb.Timestamp.Format(time.RFC3339))
	default:
		fmt.Println("agent: not running")
	}
	return nil
}
