package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned for an unknown task id. It is a negative result,
// not a failure of the store.
var ErrNotFound = errors.New("task not found")

// ErrEmptyTitle is returned by Add when no title is given.
var ErrEmptyTitle = errors.New("task title is required")

// Filter restricts List results. All set predicates must match.
type Filter struct {
	Status    Status
	Priority  Priority
	Tag       string
	DueBefore *time.Time
	DueAfter  *time.Time
}

// Summary is the aggregate view served by the get_task_summary tool.
// ByStatus and ByPriority always carry every key, zero-filled.
type Summary struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByPriority map[Priority]int `json:"byPriority"`
	Overdue    []*Task          `json:"overdue"`
	DueSoon    []*Task          `json:"dueSoon"`
	DueToday   []*Task          `json:"dueToday"`
}

// Store owns the task document at a single file path. Every read-oriented
// operation reloads the document first (read-through reload) so edits made
// by another process are picked up; every mutation rewrites the whole
// document atomically.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore creates a store backed by the document at path. The file is
// materialized with a starter set on first load.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

// List returns tasks in document order, restricted by the filter.
func (s *Store) List(f Filter) ([]*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []*Task
	for _, t := range doc.Tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Tag != "" && !t.HasTag(f.Tag) {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns the task with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, t := range doc.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// Add creates a task from the given fields, persists immediately and
// returns the stored record.
func (s *Store) Add(f Fields) (*Task, error) {
	if f.Title == "" {
		return nil, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &Task{
		ID:          GenerateTaskID(),
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Status:      StatusPending,
		DueDate:     f.DueDate,
		Tags:        f.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.Tasks = append(doc.Tasks, t)

	if err := s.save(doc); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus sets the status of the task with the given id, refreshes
// UpdatedAt and persists. Returns ErrNotFound for an unknown id.
func (s *Store) UpdateStatus(id string, status Status) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, t := range doc.Tasks {
		if t.ID != id {
			continue
		}
		t.Status = status
		t.UpdatedAt = s.now()
		if err := s.save(doc); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrNotFound
}

// Delete removes the task with the given id. It reports whether anything
// was removed; deleting an unknown id leaves the document untouched.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for i, t := range doc.Tasks {
		if t.ID != id {
			continue
		}
		doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
		if err := s.save(doc); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Summary aggregates the whole collection in a single reload.
func (s *Store) Summary() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	soonEnd := now.Add(24 * time.Hour)

	sum := &Summary{
		Total:      len(doc.Tasks),
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByPriority: make(map[Priority]int, len(Priorities)),
		Overdue:    []*Task{},
		DueSoon:    []*Task{},
		DueToday:   []*Task{},
	}
	for _, st := range Statuses {
		sum.ByStatus[st] = 0
	}
	for _, p := range Priorities {
		sum.ByPriority[p] = 0
	}

	for _, t := range doc.Tasks {
		sum.ByStatus[t.Status]++
		sum.ByPriority[t.Priority]++

		if t.Status == StatusOverdue {
			sum.Overdue = append(sum.Overdue, t)
		}
		if t.DueDate == nil || t.Status == StatusCompleted {
			continue
		}
		due := *t.DueDate
		if !due.Before(now) && due.Before(soonEnd) {
			sum.DueSoon = append(sum.DueSoon, t)
		}
		if !due.Before(dayStart) && due.Before(dayEnd) {
			sum.DueToday = append(sum.DueToday, t)
		}
	}
	return sum, nil
}

// load reads the document from disk and derives overdue status. A missing
// file is bootstrapped with the starter set; an unreadable document is
// reported and replaced by an empty collection in memory — the next
// successful write repairs the file.
func (s *Store) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		doc := seedDocument(s.now())
		s.markOverdue(doc)
		if err := s.save(doc); err != nil {
			return nil, fmt.Errorf("bootstrap document: %w", err)
		}
		slog.Info("task document bootstrapped", "path", s.path, "tasks", len(doc.Tasks))
		return doc, nil
	}
	if err != nil {
		slog.Warn("task document unreadable, starting empty", "path", s.path, "error", err)
		return &Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("task document invalid, starting empty", "path", s.path, "error", err)
		return &Document{}, nil
	}

	if s.markOverdue(&doc) {
		if err := s.save(&doc); err != nil {
			return nil, fmt.Errorf("persist overdue transition: %w", err)
		}
	}
	return &doc, nil
}

// markOverdue applies the derived-status rule: a task with a past due date
// that is neither completed nor already overdue becomes overdue. The
// transition is forward-only; extending a due date never reverts it.
func (s *Store) markOverdue(doc *Document) bool {
	now := s.now()
	changed := false
	for _, t := range doc.Tasks {
		if t.DueDate == nil || t.Status == StatusCompleted || t.Status == StatusOverdue {
			continue
		}
		if t.DueDate.Before(now) {
			t.Status = StatusOverdue
			t.UpdatedAt = now
			changed = true
		}
	}
	return changed
}

// save rewrites the whole document atomically (tmp + rename) and stamps
// LastUpdated.
func (s *Store) save(doc *Document) error {
	doc.LastUpdated = s.now()
	if doc.Tasks == nil {
		doc.Tasks = []*Task{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
