package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	nagagent "github.com/dohr-michael/nag/internal/agent"
	"github.com/dohr-michael/nag/internal/config"
	"github.com/dohr-michael/nag/internal/models"
	"github.com/dohr-michael/nag/internal/rpc"
)

// connectAgent builds the chat model, spawns `nag serve` as the tool
// server subprocess and binds its tools to the agent loop. The caller
// owns closing the returned client.
func connectAgent(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*nagagent.Agent, *rpc.Client, error) {
	chatModel, err := models.FromConfig(ctx, cfg.Models)
	if err != nil {
		return nil, nil, fmt.Errorf("create model: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, nil, fmt.Errorf("locate executable: %w", err)
	}

	// Root flags go before the subcommand name.
	args := []string{"--config", cmd.String("config")}
	if p := cmd.String("tasks"); p != "" {
		args = append(args, "--tasks", p)
	}
	if cmd.Bool("debug") {
		args = append(args, "--debug")
	}
	args = append(args, "serve")

	client := rpc.NewClient(&rpc.CommandTransport{Path: exe, Args: args}, rpc.ClientOptions{
		ClientInfo: rpc.PeerInfo{Name: "nag-agent", Version: version},
	})
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}

	ag, err := nagagent.New(ctx, chatModel, client, nagagent.Options{
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return ag, client, nil
}
