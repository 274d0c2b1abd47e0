package tasks

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "tasks.json"))
}

// emptyStore returns a store whose document exists but holds no tasks, so
// tests are not polluted by the starter set.
func emptyStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	if err := s.save(&Document{}); err != nil {
		t.Fatalf("save empty document: %v", err)
	}
	return s
}

func ptr(v time.Time) *time.Time { return &v }

func TestStoreBootstrapsStarterSet(t *testing.T) {
	s := newTestStore(t)

	list, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected starter tasks on first load")
	}

	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("document not materialized: %v", err)
	}
}

func TestStoreBootstrapDerivesOverdue(t *testing.T) {
	// The starter set includes a task already past due; the very first
	// query must report it overdue, not wait for a second load.
	s := newTestStore(t)

	list, err := s.List(Filter{Status: StatusOverdue})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("no overdue tasks on first load of the starter set")
	}
	for _, task := range list {
		if task.DueDate == nil || !task.DueDate.Before(time.Now()) {
			t.Errorf("task %q marked overdue without a past due date", task.ID)
		}
	}

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Overdue) != len(list) {
		t.Errorf("summary overdue: got %d, want %d", len(sum.Overdue), len(list))
	}
}

func TestStoreAddPersistsAcrossInstances(t *testing.T) {
	s := emptyStore(t)

	added, err := s.Add(Fields{
		Title:    "water the plants",
		Priority: PriorityLow,
		Tags:     []string{"home"},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Error("Add returned empty id")
	}
	if added.Status != StatusPending {
		t.Errorf("new task status: got %q, want %q", added.Status, StatusPending)
	}
	if !added.CreatedAt.Equal(added.UpdatedAt) {
		t.Error("CreatedAt and UpdatedAt should match on creation")
	}

	// A second store on the same path sees the write.
	reread := NewStore(s.Path())
	got, err := reread.Get(added.ID)
	if err != nil {
		t.Fatalf("Get from fresh store: %v", err)
	}
	if got.Title != "water the plants" || !got.HasTag("home") {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestStoreAddRejectsEmptyTitle(t *testing.T) {
	s := emptyStore(t)

	if _, err := s.Add(Fields{Priority: PriorityMedium}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("Add without title: got %v, want ErrEmptyTitle", err)
	}

	// The document is untouched.
	list, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("rejected add left %d tasks behind", len(list))
	}
}

func TestStoreAddGeneratesDistinctIDs(t *testing.T) {
	s := emptyStore(t)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		task, err := s.Add(Fields{Title: "t", Priority: PriorityMedium})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	s := emptyStore(t)
	task, _ := s.Add(Fields{Title: "t", Priority: PriorityHigh})

	updated, err := s.UpdateStatus(task.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("status: got %q", updated.Status)
	}

	if _, err := s.UpdateStatus("task_missing", StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := emptyStore(t)
	task, _ := s.Add(Fields{Title: "t", Priority: PriorityMedium})

	removed, err := s.Delete(task.ID)
	if err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	if _, err := s.Get(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}

	removed, err = s.Delete(task.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if removed {
		t.Error("deleting a missing id should report false, not fail")
	}
}

func TestStoreOverdueDerivation(t *testing.T) {
	s := emptyStore(t)

	task, err := s.Add(Fields{
		Title:    "file the report",
		Priority: PriorityHigh,
		DueDate:  ptr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Add leaves the task pending; the transition happens on the next load.
	if task.Status != StatusPending {
		t.Fatalf("status after add: got %q", task.Status)
	}

	got, err := s.Get(task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusOverdue {
		t.Errorf("status: got %q, want %q", got.Status, StatusOverdue)
	}

	// The derived status is persisted, not just in memory.
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if doc.Tasks[0].Status != StatusOverdue {
		t.Errorf("persisted status: got %q", doc.Tasks[0].Status)
	}
}

func TestStoreOverdueIsForwardOnly(t *testing.T) {
	s := emptyStore(t)
	task, _ := s.Add(Fields{
		Title:    "t",
		Priority: PriorityMedium,
		DueDate:  ptr(time.Now().Add(-time.Hour)),
	})

	got, _ := s.Get(task.ID)
	if got.Status != StatusOverdue {
		t.Fatalf("precondition: got %q", got.Status)
	}

	// Push the due date into the future behind the store's back.
	data, _ := os.ReadFile(s.Path())
	var doc Document
	json.Unmarshal(data, &doc)
	for _, dt := range doc.Tasks {
		if dt.ID == task.ID {
			dt.DueDate = ptr(time.Now().Add(time.Hour))
		}
	}
	if err := s.save(&doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	after, _ := s.Get(task.ID)
	if after.Status != StatusOverdue {
		t.Errorf("status after extending due date: got %q, want it to stay overdue", after.Status)
	}
}

func TestStoreCompletedNeverGoesOverdue(t *testing.T) {
	s := emptyStore(t)
	task, _ := s.Add(Fields{
		Title:    "t",
		Priority: PriorityMedium,
		DueDate:  ptr(time.Now().Add(time.Hour)),
	})
	s.UpdateStatus(task.ID, StatusCompleted)

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	got, _ := s.Get(task.ID)
	if got.Status != StatusCompleted {
		t.Errorf("status: got %q, want %q", got.Status, StatusCompleted)
	}
}

func TestStoreListFiltersAreConjunctive(t *testing.T) {
	s := emptyStore(t)
	s.Add(Fields{Title: "a", Priority: PriorityHigh, Tags: []string{"work"}})
	s.Add(Fields{Title: "b", Priority: PriorityHigh, Tags: []string{"home"}})
	s.Add(Fields{Title: "c", Priority: PriorityLow, Tags: []string{"work"}})

	list, err := s.List(Filter{Priority: PriorityHigh, Tag: "work"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "a" {
		t.Errorf("filtered list: got %d tasks", len(list))
	}
}

func TestStoreListDueWindow(t *testing.T) {
	s := emptyStore(t)
	now := time.Now()
	s.Add(Fields{Title: "soon", Priority: PriorityMedium, DueDate: ptr(now.Add(2 * time.Hour))})
	s.Add(Fields{Title: "later", Priority: PriorityMedium, DueDate: ptr(now.Add(80 * time.Hour))})
	s.Add(Fields{Title: "undated", Priority: PriorityMedium})

	cutoff := now.Add(24 * time.Hour)
	list, err := s.List(Filter{DueBefore: &cutoff})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "soon" {
		t.Errorf("DueBefore: got %d tasks", len(list))
	}

	list, err = s.List(Filter{DueAfter: &cutoff})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "later" {
		t.Errorf("DueAfter: got %d tasks", len(list))
	}

	// Both bounds combined select a window; undated tasks never match.
	lo := now.Add(time.Hour)
	hi := now.Add(100 * time.Hour)
	list, err = s.List(Filter{DueAfter: &lo, DueBefore: &hi})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("window: got %d tasks, want 2", len(list))
	}
}

func TestStoreSummary(t *testing.T) {
	s := emptyStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Add(Fields{Title: "today", Priority: PriorityHigh, DueDate: ptr(base.Add(5 * time.Hour))})
	s.Add(Fields{Title: "tomorrow morning", Priority: PriorityMedium, DueDate: ptr(base.Add(20 * time.Hour))})
	s.Add(Fields{Title: "late", Priority: PriorityCritical, DueDate: ptr(base.Add(-30 * time.Hour))})
	s.Add(Fields{Title: "someday", Priority: PriorityLow})

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if sum.Total != 4 {
		t.Errorf("total: got %d", sum.Total)
	}
	for _, st := range Statuses {
		if _, ok := sum.ByStatus[st]; !ok {
			t.Errorf("ByStatus missing key %q", st)
		}
	}
	for _, p := range Priorities {
		if _, ok := sum.ByPriority[p]; !ok {
			t.Errorf("ByPriority missing key %q", p)
		}
	}
	if sum.ByStatus[StatusOverdue] != 1 || sum.ByStatus[StatusPending] != 3 {
		t.Errorf("ByStatus: %v", sum.ByStatus)
	}

	if len(sum.Overdue) != 1 || sum.Overdue[0].Title != "late" {
		t.Errorf("Overdue: got %d entries", len(sum.Overdue))
	}
	// "today" at +5h and "tomorrow morning" at +20h both land in the next
	// 24 hours; only "today" falls inside the calendar day.
	if len(sum.DueSoon) != 2 {
		t.Errorf("DueSoon: got %d entries", len(sum.DueSoon))
	}
	if len(sum.DueToday) != 1 || sum.DueToday[0].Title != "today" {
		t.Errorf("DueToday: got %d entries", len(sum.DueToday))
	}
}

func TestStoreSummaryEmptyIsZeroFilled(t *testing.T) {
	s := emptyStore(t)

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 0 {
		t.Errorf("total: got %d", sum.Total)
	}
	if sum.Overdue == nil || sum.DueSoon == nil || sum.DueToday == nil {
		t.Error("task lists must be empty slices, not nil")
	}
	if len(sum.ByStatus) != len(Statuses) || len(sum.ByPriority) != len(Priorities) {
		t.Errorf("zero-filled maps: %v %v", sum.ByStatus, sum.ByPriority)
	}
}

func TestStoreCorruptDocumentStartsEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List on corrupt document: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d tasks from corrupt document", len(list))
	}

	// The next write repairs the file.
	if _, err := s.Add(Fields{Title: "t", Priority: PriorityMedium}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	data, _ := os.ReadFile(s.Path())
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document still corrupt after write: %v", err)
	}
	if len(doc.Tasks) != 1 {
		t.Errorf("repaired document: got %d tasks", len(doc.Tasks))
	}
}

func TestStoreSaveStampsLastUpdated(t *testing.T) {
	s := emptyStore(t)
	stamp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	if _, err := s.Add(Fields{Title: "t", Priority: PriorityMedium}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, _ := os.ReadFile(s.Path())
	var doc Document
	json.Unmarshal(data, &doc)
	if !doc.LastUpdated.Equal(stamp) {
		t.Errorf("lastUpdated: got %v, want %v", doc.LastUpdated, stamp)
	}
}
