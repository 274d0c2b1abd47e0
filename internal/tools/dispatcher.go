package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dohr-michael/nag/internal/tasks"
)

// ArgumentError reports a missing or invalid tool argument. It is always
// rendered as an error-flagged result, never thrown past the dispatcher.
type ArgumentError struct {
	Tool   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

// Dispatcher maps tool invocations onto task store operations.
type Dispatcher struct {
	store *tasks.Store
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(store *tasks.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Dispatch runs the named tool with the given arguments. Any failure —
// unknown tool, bad argument, unknown task id, store error — comes back as
// an error-flagged CallResult; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) *CallResult {
	v, err := d.call(ctx, name, args)
	if err != nil {
		return errorResult(err.Error())
	}

	text, err := renderText(v)
	if err != nil {
		return errorResult(fmt.Sprintf("%s: render result: %v", name, err))
	}
	return textResult(text)
}

func (d *Dispatcher) call(_ context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "get_tasks":
		f := tasks.Filter{}
		if s, ok := stringArg(args, "status"); ok {
			st := tasks.Status(s)
			if !st.Valid() {
				return nil, &ArgumentError{Tool: name, Reason: fmt.Sprintf("invalid status %q", s)}
			}
			f.Status = st
		}
		if s, ok := stringArg(args, "priority"); ok {
			p := tasks.Priority(s)
			if !p.Valid() {
				return nil, &ArgumentError{Tool: name, Reason: fmt.Sprintf("invalid priority %q", s)}
			}
			f.Priority = p
		}
		if s, ok := stringArg(args, "tag"); ok {
			f.Tag = s
		}
		return d.store.List(f)

	case "get_task_summary":
		return d.store.Summary()

	case "get_task_by_id":
		id, err := requireString(name, args, "id")
		if err != nil {
			return nil, err
		}
		t, err := d.store.Get(id)
		if errors.Is(err, tasks.ErrNotFound) {
			return nil, fmt.Errorf("no task with id %q", id)
		}
		return t, err

	case "add_task":
		title, err := requireString(name, args, "title")
		if err != nil {
			return nil, err
		}
		prio, err := requireString(name, args, "priority")
		if err != nil {
			return nil, err
		}
		p := tasks.Priority(prio)
		if !p.Valid() {
			return nil, &ArgumentError{Tool: name, Reason: fmt.Sprintf("invalid priority %q", prio)}
		}

		f := tasks.Fields{Title: title, Priority: p}
		if desc, ok := stringArg(args, "description"); ok {
			f.Description = desc
		}
		if raw, ok := stringArg(args, "dueDate"); ok {
			due, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, &ArgumentError{Tool: name, Reason: fmt.Sprintf("invalid dueDate %q: must be RFC 3339", raw)}
			}
			f.DueDate = &due
		}
		if tags, ok, err := stringsArg(name, args, "tags"); err != nil {
			return nil, err
		} else if ok {
			f.Tags = tags
		}
		return d.store.Add(f)

	case "update_task_status":
		id, err := requireString(name, args, "id")
		if err != nil {
			return nil, err
		}
		status, err := requireString(name, args, "status")
		if err != nil {
			return nil, err
		}
		st := tasks.Status(status)
		if !st.Valid() {
			return nil, &ArgumentError{Tool: name, Reason: fmt.Sprintf("invalid status %q", status)}
		}
		t, err := d.store.UpdateStatus(id, st)
		if errors.Is(err, tasks.ErrNotFound) {
			return nil, fmt.Errorf("no task with id %q", id)
		}
		return t, err

	case "delete_task":
		id, err := requireString(name, args, "id")
		if err != nil {
			return nil, err
		}
		deleted, err := d.store.Delete(id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "deleted": deleted}, nil

	case "get_overdue_tasks":
		return d.store.List(tasks.Filter{Status: tasks.StatusOverdue})

	case "get_today_tasks":
		sum, err := d.store.Summary()
		if err != nil {
			return nil, err
		}
		return sum.DueToday, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func requireString(tool string, args map[string]any, key string) (string, error) {
	s, ok := stringArg(args, key)
	if !ok {
		return "", &ArgumentError{Tool: tool, Reason: fmt.Sprintf("missing required argument %q", key)}
	}
	return s, nil
}

func stringsArg(tool string, args map[string]any, key string) ([]string, bool, error) {
	v, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false, &ArgumentError{Tool: tool, Reason: fmt.Sprintf("argument %q must be an array of strings", key)}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, false, &ArgumentError{Tool: tool, Reason: fmt.Sprintf("argument %q must be an array of strings", key)}
		}
		out = append(out, s)
	}
	return out, true, nil
}

// renderText serializes a tool result to its canonical text form.
func renderText(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func textResult(text string) *CallResult {
	return &CallResult{Content: []Content{{Type: "text", Text: text}}}
}

func errorResult(text string) *CallResult {
	return &CallResult{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}
