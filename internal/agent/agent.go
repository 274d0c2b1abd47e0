// Package agent runs the chat-completion loop against the tool server.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/nag/internal/rpc"
)

// Options configures the agent loop. Zero values mean defaults.
type Options struct {
	SystemPrompt  string
	MaxIterations int
}

// Agent drives a tool-calling chat model against the tools the rpc server
// exposes. Every tool invocation the model requests is forwarded over the
// channel and its text result fed back into the conversation.
type Agent struct {
	model model.ToolCallingChatModel
	tools map[string]*RemoteTool
	opts  Options
}

// New fetches the server's tool catalog over the client and binds it to
// the chat model.
func New(ctx context.Context, chatModel model.ToolCallingChatModel, client *rpc.Client, opts Options) (*Agent, error) {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 8
	}

	remote, err := FetchTools(ctx, client)
	if err != nil {
		return nil, err
	}

	infos := make([]*schema.ToolInfo, 0, len(remote))
	byName := make(map[string]*RemoteTool, len(remote))
	for _, rt := range remote {
		info, err := rt.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
		byName[info.Name] = rt
	}

	bound, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	return &Agent{model: bound, tools: byName, opts: opts}, nil
}

// Run answers one user message, looping through tool calls until the model
// produces a plain reply.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(a.opts.SystemPrompt),
		schema.UserMessage(userMessage),
	}

	for i := 0; i < a.opts.MaxIterations; i++ {
		out, err := a.model.Generate(ctx, msgs)
		if err != nil {
			return "", fmt.Errorf("generate: %w", err)
		}
		msgs = append(msgs, out)

		if len(out.ToolCalls) == 0 {
			return out.Content, nil
		}

		for _, tc := range out.ToolCalls {
			msgs = append(msgs, a.runToolCall(ctx, tc))
		}
	}
	return "", fmt.Errorf("no final answer after %d iterations", a.opts.MaxIterations)
}

func (a *Agent) runToolCall(ctx context.Context, tc schema.ToolCall) *schema.Message {
	name := tc.Function.Name
	slog.Debug("agent: tool call", "tool", name)

	rt, ok := a.tools[name]
	if !ok {
		return schema.ToolMessage(fmt.Sprintf("tool error: unknown tool %q", name), tc.ID)
	}

	text, err := rt.InvokableRun(ctx, tc.Function.Arguments)
	if err != nil {
		// Transport-level failure; tell the model rather than aborting the
		// whole conversation.
		slog.Warn("agent: tool call failed", "tool", name, "error", err)
		return schema.ToolMessage(fmt.Sprintf("tool error: %v", err), tc.ID)
	}
	return schema.ToolMessage(text, tc.ID)
}
