package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	nagagent "github.com/dohr-michael/nag/internal/agent"
	"github.com/dohr-michael/nag/internal/config"
	"github.com/dohr-michael/nag/internal/events"
	"github.com/dohr-michael/nag/internal/heartbeat"
	"github.com/dohr-michael/nag/internal/scheduler"
)

// NewAgentCommand returns the agent subcommand: the long-running reminder
// process.
func NewAgentCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Run the reminder agent on its schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cron",
				Usage: "Reminder schedule (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Send one reminder immediately on startup",
			},
		},
		Action: runAgent,
	}
}

func runAgent(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd.Bool("debug"))
	cfg := loadConfig(cmd)

	cronSpec := cfg.Schedule.Cron
	if v := cmd.String("cron"); v != "" {
		cronSpec = v
	}
	cronExpr, err := scheduler.ParseCron(cronSpec)
	if err != nil {
		return err
	}

	ag, client, err := connectAgent(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	bus := events.NewBus(64)
	defer bus.Close()

	// Reminder runs hang off the bus so LLM latency never stalls the tick
	// loop; runs that overlap a still-running one are dropped by the
	// buffered gate.
	gate := make(chan struct{}, 1)
	remind := func(trigger string) {
		select {
		case gate <- struct{}{}:
		default:
			slog.Warn("reminder still running, skipping trigger", "trigger", trigger)
			return
		}
		defer func() { <-gate }()

		answer, err := ag.Run(ctx, nagagent.ReminderPrompt)
		if err != nil {
			slog.Error("reminder run failed", "error", err)
			return
		}
		fmt.Fprintf(os.Stdout, "\n--- nag reminder (%s) ---\n%s\n", time.Now().Format("15:04"), answer)
		bus.Publish(events.NewEvent(events.EventReminderSent, map[string]any{"trigger": trigger}))
	}

	unsubscribe := bus.Subscribe(func(events.Event) { remind("schedule") }, events.EventReminderDue)
	defer unsubscribe()

	sched := scheduler.New(cronExpr, bus)
	sched.Start()
	defer sched.Stop()

	hb := heartbeat.NewWriter(config.HeartbeatPath(), cronSpec)
	hb.Start()
	defer hb.Stop()

	slog.Info("nag agent running", "cron", cronSpec, "tasks", cfg.Tasks.Path)

	if cmd.Bool("now") {
		go remind("startup")
	}

	<-ctx.Done()
	return nil
}
