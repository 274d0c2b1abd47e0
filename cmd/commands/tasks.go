package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/nag/internal/tasks"
)

// NewTasksCommand returns the tasks subcommand: direct store access
// without the LLM in the loop.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Inspect and edit the task list directly",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					&cli.StringFlag{Name: "priority", Usage: "Filter by priority"},
					&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
				},
				Action: runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "desc", Usage: "Description"},
					&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low|medium|high|critical", Value: "medium"},
					&cli.StringFlag{Name: "due", Usage: "Due timestamp, RFC 3339"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable)"},
				},
				Action: runTasksAdd,
			},
			{
				Name:      "done",
				Usage:     "Mark a task completed",
				ArgsUsage: "<id>",
				Action:    runTasksDone,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action:    runTasksRm,
			},
			{
				Name:   "summary",
				Usage:  "Print the aggregate summary",
				Action: runTasksSummary,
			},
		},
		DefaultCommand: "list",
	}
}

func openStore(cmd *cli.Command) *tasks.Store {
	setupLogging(cmd.Bool("debug"))
	cfg := loadConfig(cmd)
	return tasks.NewStore(cfg.Tasks.Path)
}

func runTasksList(_ context.Context, cmd *cli.Command) error {
	store := openStore(cmd)

	list, err := store.List(tasks.Filter{
		Status:   tasks.Status(cmd.String("status")),
		Priority: tasks.Priority(cmd.String("priority")),
		Tag:      cmd.String("tag"),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE\tTAGS")
	for _, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Priority, t.Status, due, strings.Join(t.Tags, ","))
	}
	return w.Flush()
}

func runTasksAdd(_ context.Context, cmd *cli.Command) error {
	title := cmd.Args().First()
	if title == "" {
		return fmt.Errorf("usage: nag tasks add <title>")
	}

	prio := tasks.Priority(cmd.String("priority"))
	if !prio.Valid() {
		return fmt.Errorf("invalid priority %q", cmd.String("priority"))
	}

	f := tasks.Fields{
		Title:       title,
		Description: cmd.String("desc"),
		Priority:    prio,
		Tags:        cmd.StringSlice("tag"),
	}
	if raw := cmd.String("due"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --due %q: %w", raw, err)
		}
		f.DueDate = &due
	}

	store := openStore(cmd)
	t, err := store.Add(f)
	if err != nil {
		return err
	}
	fmt.Printf("added %s: %s\n", t.ID, t.Title)
	return nil
}

func runTasksDone(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: nag tasks done <id>")
	}

	store := openStore(cmd)
	t, err := store.UpdateStatus(id, tasks.StatusCompleted)
	if err != nil {
		return err
	}
	fmt.Printf("completed %s: %s\n", t.ID, t.Title)
	return nil
}

func runTasksRm(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: nag tasks rm <id>")
	}

	store := openStore(cmd)
	deleted, err := store.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no task with id %q", id)
	}
	fmt.Printf("deleted %s\n", id)
	return nil
}

func runTasksSummary(_ context.Context, cmd *cli.Command) error {
	store := openStore(cmd)
	sum, err := store.Summary()
	if err != nil {
		return err
	}

	fmt.Printf("total: %d\n", sum.Total)
	for _, st := range tasks.Statuses {
		fmt.Printf("  %-12s %d\n", st, sum.ByStatus[st])
	}
	fmt.Printf("overdue: %d, due in 24h: %d, due today: %d\n",
		len(sum.Overdue), len(sum.DueSoon), len(sum.DueToday))
	return nil
}
