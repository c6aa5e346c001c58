// Package memory is an in-memory implementation of reruns.Store for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/podscript/wrangle/pkg/wrangle/reruns"
)

// Store holds the repetition index in memory.
type Store struct {
	mu        sync.RWMutex
	files     map[int]string
	sentences []reruns.Sentence
	runs      []reruns.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{files: make(map[int]string)}
}

// Close implements reruns.Store.
func (s *Store) Close() error { return nil }

// AddFile registers a file and clears rows from any earlier pass over it.
func (s *Store) AddFile(ctx context.Context, fileNum int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[fileNum] = name

	kept := s.sentences[:0]
	for _, sent := range s.sentences {
		if sent.FileNum != fileNum {
			kept = append(kept, sent)
		}
	}
	s.sentences = kept

	keptRuns := s.runs[:0]
	for _, run := range s.runs {
		if run.FileNum != fileNum {
			keptRuns = append(keptRuns, run)
		}
	}
	s.runs = keptRuns

	return nil
}

// AddSentences appends a batch of sentence positions.
func (s *Store) AddSentences(ctx context.Context, sents []reruns.Sentence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sentences = append(s.sentences, sents...)
	return nil
}

// ScanSentences streams every sentence in index order.
func (s *Store) ScanSentences(ctx context.Context, fn func(reruns.Sentence) error) error {
	s.mu.RLock()
	ordered := make([]reruns.Sentence, len(s.sentences))
	copy(ordered, s.sentences)
	s.mu.RUnlock()

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.FileNum != b.FileNum {
			return a.FileNum < b.FileNum
		}
		if a.LineNum != b.LineNum {
			return a.LineNum < b.LineNum
		}
		return a.SentNum < b.SentNum
	})

	for _, sent := range ordered {
		if err := fn(sent); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceRuns replaces the detected run set.
func (s *Store) ReplaceRuns(ctx context.Context, runs []reruns.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs[:0:0], runs...)
	return nil
}

// RunsForFile returns the detected runs for one file.
func (s *Store) RunsForFile(ctx context.Context, fileNum int) ([]reruns.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []reruns.Run
	for _, run := range s.runs {
		if run.FileNum == fileNum {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LineNum != out[j].LineNum {
			return out[i].LineNum < out[j].LineNum
		}
		return out[i].StartSent < out[j].StartSent
	})
	return out, nil
}

// Counts summarizes the index contents.
func (s *Store) Counts(ctx context.Context) (reruns.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return reruns.Counts{
		Files:     int64(len(s.files)),
		Sentences: int64(len(s.sentences)),
		Runs:      int64(len(s.runs)),
	}, nil
}
