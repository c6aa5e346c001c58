// Package shard splits a file list across SLURM array tasks. Every task
// runs the same command; the array task index decides which files it owns.
package shard

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TaskEnvVar is set by SLURM for each member of a job array.
const TaskEnvVar = "SLURM_ARRAY_TASK_ID"

// TaskID reads the array task index from the environment. An unset or
// blank variable means task 0, which with a task count of 1 selects
// every file, so plain runs outside SLURM need no setup.
func TaskID() (int, error) {
	raw := strings.TrimSpace(os.Getenv(TaskEnvVar))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", TaskEnvVar, raw, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("%s=%d: task index cannot be negative", TaskEnvVar, id)
	}
	return id, nil
}

// Select returns the files assigned to one task of a round-robin split.
// Task k of n takes indexes k, k+n, k+2n of the input order, so shards
// stay balanced even when file sizes cluster by name.
func Select(files []string, taskID, taskCount int) ([]string, error) {
	if taskCount < 1 {
		return nil, fmt.Errorf("task count %d: must be at least 1", taskCount)
	}
	if taskID < 0 || taskID >= taskCount {
		return nil, fmt.Errorf("task %d of %d: index out of range", taskID, taskCount)
	}

	var out []string
	for i := taskID; i < len(files); i += taskCount {
		out = append(out, files[i])
	}
	return out, nil
}
