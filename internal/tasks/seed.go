package tasks

import "time"

// seedDocument builds the starter set written when no document exists yet.
// It covers every priority and mixes future and past due dates so the
// reminder tools have something to report out of the box.
func seedDocument(now time.Time) *Document {
	due := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	mk := func(id, title, desc string, prio Priority, dueDate *time.Time, tags ...string) *Task {
		return &Task{
			ID:          id,
			Title:       title,
			Description: desc,
			Priority:    prio,
			Status:      StatusPending,
			DueDate:     dueDate,
			Tags:        tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return &Document{
		Tasks: []*Task{
			mk("task_welcome", "Try asking nag about your tasks",
				"Run `nag ask \"what is due today?\"` to see the agent in action.",
				PriorityLow, nil, "nag"),
			mk("task_seed_water", "Water the plants",
				"The ficus forgives nothing.",
				PriorityMedium, due(4*time.Hour), "home"),
			mk("task_seed_report", "Send the weekly report",
				"Summary of the week, to the usual list.",
				PriorityHigh, due(20*time.Hour), "work"),
			mk("task_seed_backup", "Verify the backup restore",
				"A backup that was never restored is a hope, not a backup.",
				PriorityCritical, due(-2*time.Hour), "ops"),
			mk("task_seed_library", "Return library books",
				"",
				PriorityMedium, due(72*time.Hour), "errands"),
		},
	}
}
