package shard

import (
	"testing"
)

func TestSelectPartitionsEveryFile(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f", "g"}
	const tasks = 3

	seen := make(map[string]int)
	for id := 0; id < tasks; id++ {
		part, err := Select(files, id, tasks)
		if err != nil {
			t.Fatalf("Select task %d: %v", id, err)
		}
		for _, f := range part {
			seen[f]++
		}
	}

	if len(seen) != len(files) {
		t.Fatalf("tasks covered %d files, want %d", len(seen), len(files))
	}
	for f, n := range seen {
		if n != 1 {
			t.Errorf("file %q assigned to %d tasks", f, n)
		}
	}
}

func TestSelectRoundRobinOrder(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}

	part, err := Select(files, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "d"}
	if len(part) != len(want) {
		t.Fatalf("got %v, want %v", part, want)
	}
	for i := range want {
		if part[i] != want[i] {
			t.Fatalf("got %v, want %v", part, want)
		}
	}
}

func TestSelectSingleTaskTakesAll(t *testing.T) {
	files := []string{"a", "b", "c"}
	part, err := Select(files, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(part) != len(files) {
		t.Fatalf("single task got %d files, want %d", len(part), len(files))
	}
}

func TestSelectMoreTasksThanFiles(t *testing.T) {
	part, err := Select([]string{"a"}, 3, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(part) != 0 {
		t.Errorf("spare task should get nothing, got %v", part)
	}
}

func TestSelectRejectsBadBounds(t *testing.T) {
	if _, err := Select([]string{"a"}, 0, 0); err == nil {
		t.Error("zero task count accepted")
	}
	if _, err := Select([]string{"a"}, 2, 2); err == nil {
		t.Error("task index == count accepted")
	}
	if _, err := Select([]string{"a"}, -1, 2); err == nil {
		t.Error("negative task index accepted")
	}
}

func TestTaskIDUnsetDefaultsToZero(t *testing.T) {
	t.Setenv(TaskEnvVar, "")
	id, err := TaskID()
	if err != nil {
		t.Fatalf("TaskID: %v", err)
	}
	if id != 0 {
		t.Errorf("unset task ID = %d, want 0", id)
	}
}

func TestTaskIDFromEnv(t *testing.T) {
	t.Setenv(TaskEnvVar, "17")
	id, err := TaskID()
	if err != nil {
		t.Fatalf("TaskID: %v", err)
	}
	if id != 17 {
		t.Errorf("task ID = %d, want 17", id)
	}
}

func TestTaskIDRejectsGarbage(t *testing.T) {
	t.Setenv(TaskEnvVar, "banana")
	if _, err := TaskID(); err == nil {
		t.Error("non-numeric task ID accepted")
	}

	t.Setenv(TaskEnvVar, "-2")
	if _, err := TaskID(); err == nil {
		t.Error("negative task ID accepted")
	}
}
