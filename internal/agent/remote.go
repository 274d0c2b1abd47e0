package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/nag/internal/rpc"
	"github.com/dohr-michael/nag/internal/tools"
)

// RemoteTool adapts one server-side tool to Eino's tool.InvokableTool
// interface. Invocations travel over the rpc channel as tools/call.
type RemoteTool struct {
	desc   tools.Descriptor
	client *rpc.Client
}

// Info returns the ToolInfo for Eino registration.
func (t *RemoteTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return descriptorToToolInfo(t.desc), nil
}

// InvokableRun forwards the call to the server and returns the text
// payload. An error-flagged tool result comes back as plain text so the
// model can read and react to it; only transport faults become errors.
func (t *RemoteTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	params := map[string]any{
		"name":      t.desc.Name,
		"arguments": rawArguments(argumentsInJSON),
	}

	var result tools.CallResult
	if err := t.client.Call(ctx, "tools/call", params, &result); err != nil {
		return "", fmt.Errorf("call tool %q: %w", t.desc.Name, err)
	}

	text := joinText(result.Content)
	if result.IsError {
		return "tool error: " + text, nil
	}
	return text, nil
}

// FetchTools lists the server's tools and wraps each one.
func FetchTools(ctx context.Context, client *rpc.Client) ([]*RemoteTool, error) {
	var list tools.ListResult
	if err := client.Call(ctx, "tools/list", map[string]any{}, &list); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	out := make([]*RemoteTool, 0, len(list.Tools))
	for _, d := range list.Tools {
		out = append(out, &RemoteTool{desc: d, client: client})
	}
	return out, nil
}

// descriptorToToolInfo converts a wire descriptor to an Eino ToolInfo.
func descriptorToToolInfo(d tools.Descriptor) *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: d.Name,
		Desc: d.Description,
	}

	props, _ := d.InputSchema["properties"].(map[string]any)
	if len(props) == 0 {
		return info
	}

	required := make(map[string]bool)
	if req, ok := d.InputSchema["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}
	if req, ok := d.InputSchema["required"].([]string); ok {
		for _, s := range req {
			required[s] = true
		}
	}

	params := make(map[string]*schema.ParameterInfo, len(props))
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		params[name] = propToParameterInfo(prop, required[name])
	}
	info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	return info
}

func propToParameterInfo(prop map[string]any, required bool) *schema.ParameterInfo {
	typ, _ := prop["type"].(string)
	desc, _ := prop["description"].(string)

	p := &schema.ParameterInfo{
		Type:     typeToDataType(typ),
		Desc:     desc,
		Required: required,
	}

	switch enum := prop["enum"].(type) {
	case []string:
		p.Enum = enum
	case []any:
		for _, e := range enum {
			if s, ok := e.(string); ok {
				p.Enum = append(p.Enum, s)
			}
		}
	}

	if p.Type == schema.Array {
		if items, ok := prop["items"].(map[string]any); ok {
			p.ElemInfo = propToParameterInfo(items, false)
		}
	}
	return p
}

func typeToDataType(t string) schema.DataType {
	switch t {
	case "string":
		return schema.String
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}

// rawArguments decodes the model's argument JSON; malformed arguments
// degrade to an empty mapping and let the dispatcher report what's missing.
func rawArguments(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func joinText(blocks []tools.Content) string {
	var out string
	for _, b := range blocks {
		if b.Type != "text" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += b.Text
	}
	return out
}

var _ tool.InvokableTool = (*RemoteTool)(nil)
