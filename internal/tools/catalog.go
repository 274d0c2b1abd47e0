// Package tools exposes the task store as named, schema-described tools
// callable over the rpc channel.
package tools

// Descriptor describes one tool for tools/list: name, human-readable
// description and a JSON-schema parameter descriptor.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ListResult is the tools/list response payload.
type ListResult struct {
	Tools []Descriptor `json:"tools"`
}

// CallParams is the tools/call request payload: a tool name plus its
// loosely-typed arguments.
type CallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallResult is the tools/call response payload. IsError marks dispatcher
// level failures (unknown tool, bad arguments, unknown id); those never
// surface as transport errors.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is one block of a tool result. nag only emits text blocks.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func emptySchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func prop(typ, desc string, extra ...map[string]any) map[string]any {
	p := map[string]any{"type": typ, "description": desc}
	for _, e := range extra {
		for k, v := range e {
			p[k] = v
		}
	}
	return p
}

var statusEnum = map[string]any{"enum": []string{"pending", "in_progress", "completed", "overdue"}}
var priorityEnum = map[string]any{"enum": []string{"low", "medium", "high", "critical"}}

// Catalog returns the static tool set. It is independent of the store and
// served as-is by tools/list.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:        "get_tasks",
			Description: "List tasks, optionally filtered by status, priority, or tag",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status":   prop("string", "Only tasks with this status", statusEnum),
					"priority": prop("string", "Only tasks with this priority", priorityEnum),
					"tag":      prop("string", "Only tasks carrying this tag"),
				},
			},
		},
		{
			Name:        "get_task_summary",
			Description: "Aggregate counts by status and priority, plus overdue, due-soon, and due-today task lists",
			InputSchema: emptySchema(),
		},
		{
			Name:        "get_task_by_id",
			Description: "Fetch a single task by its id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": prop("string", "The task id"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "add_task",
			Description: "Create a new task; id, status, and timestamps are assigned by the store",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       prop("string", "Task title"),
					"description": prop("string", "Optional longer description"),
					"priority":    prop("string", "Task priority", priorityEnum),
					"dueDate":     prop("string", "Optional due timestamp, RFC 3339"),
					"tags": map[string]any{
						"type":        "array",
						"description": "Optional free-text tags",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"title", "priority"},
			},
		},
		{
			Name:        "update_task_status",
			Description: "Set the status of a task by id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":     prop("string", "The task id"),
					"status": prop("string", "The new status", statusEnum),
				},
				"required": []string{"id", "status"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Permanently remove a task by id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": prop("string", "The task id"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_overdue_tasks",
			Description: "List tasks whose due date has passed and that are not completed",
			InputSchema: emptySchema(),
		},
		{
			Name:        "get_today_tasks",
			Description: "List tasks due within the current local calendar day and not completed",
			InputSchema: emptySchema(),
		},
	}
}
