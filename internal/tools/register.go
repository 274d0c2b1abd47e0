package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dohr-michael/nag/internal/rpc"
)

// Register wires the tool methods onto an rpc server: tools/list serves the
// static catalog, tools/call goes through the dispatcher.
func Register(srv *rpc.Server, d *Dispatcher) {
	srv.Handle("tools/list", func(_ context.Context, _ json.RawMessage) (any, error) {
		return ListResult{Tools: Catalog()}, nil
	})

	srv.Handle("tools/call", func(ctx context.Context, params json.RawMessage) (any, error) {
		var p CallParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode tools/call params: %v", err)
		}
		if p.Name == "" {
			return errorResult("tools/call: missing tool name"), nil
		}
		return d.Dispatch(ctx, p.Name, p.Arguments), nil
	})

	// Handshake completion marker from the client; nothing to do.
	srv.Handle("initialized", func(_ context.Context, _ json.RawMessage) (any, error) {
		return nil, nil
	})
}
