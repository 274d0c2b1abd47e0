package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the agent about your tasks and print the answer",
		ArgsUsage: "<message>",
		Action:    runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := cmd.Args().First()
	if message == "" {
		return fmt.Errorf("usage: nag ask <message>")
	}

	setupLogging(cmd.Bool("debug"))
	cfg := loadConfig(cmd)

	ag, client, err := connectAgent(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	answer, err := ag.Run(ctx, message)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
