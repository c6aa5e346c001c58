// Package postgres stores the repetition index in PostgreSQL, for corpora
// indexed from several cluster nodes at once. Schema and semantics match
// the sqlite store; the hash column holds the unsigned sentence hash
// bit-for-bit in a signed BIGINT.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/podscript/wrangle/pkg/wrangle/reruns"
)

// pgStore implements the reruns.Store interface using PostgreSQL
type pgStore struct {
	db *sql.DB
}

// Open connects to PostgreSQL, verifies connectivity and creates the
// schema if needed.
func Open(ctx context.Context, dsn string) (reruns.Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &pgStore{db: db}, nil
}

// Close closes the database connection
func (s *pgStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. Statements run one at a
// time; the pgx driver's extended protocol rejects multi-command strings.
func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
	file_num BIGINT PRIMARY KEY,
	name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS sentences (
	file_num BIGINT NOT NULL,
	line_num BIGINT NOT NULL,
	sent_num BIGINT NOT NULL,
	hash BIGINT NOT NULL,
	PRIMARY KEY(file_num, line_num, sent_num)
)`,
		`CREATE TABLE IF NOT EXISTS repetition_runs (
	file_num BIGINT NOT NULL,
	line_num BIGINT NOT NULL,
	start_sent BIGINT NOT NULL,
	length BIGINT NOT NULL,
	hash BIGINT NOT NULL,
	PRIMARY KEY(file_num, line_num, start_sent)
)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddFile registers a file and clears rows from any earlier pass over it.
func (s *pgStore) AddFile(ctx context.Context, fileNum int, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE file_num=$1`, fileNum); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM repetition_runs WHERE file_num=$1`, fileNum); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO files (file_num, name) VALUES ($1, $2)
ON CONFLICT(file_num) DO UPDATE SET name=excluded.name;
`, fileNum, name); err != nil {
		return err
	}

	return tx.Commit()
}

// AddSentences appends a batch of sentence positions.
func (s *pgStore) AddSentences(ctx context.Context, sents []reruns.Sentence) error {
	if len(sents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO sentences (file_num, line_num, sent_num, hash) VALUES ($1, $2, $3, $4)
ON CONFLICT(file_num, line_num, sent_num) DO UPDATE SET hash=excluded.hash;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sent := range sents {
		if _, err := stmt.ExecContext(ctx, sent.FileNum, sent.LineNum, sent.SentNum, int64(sent.Hash)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ScanSentences streams every sentence in index order.
func (s *pgStore) ScanSentences(ctx context.Context, fn func(reruns.Sentence) error) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT file_num, line_num, sent_num, hash
FROM sentences
ORDER BY file_num, line_num, sent_num;
`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sent reruns.Sentence
		var hash int64
		if err := rows.Scan(&sent.FileNum, &sent.LineNum, &sent.SentNum, &hash); err != nil {
			return err
		}
		sent.Hash = uint64(hash)
		if err := fn(sent); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ReplaceRuns replaces the detected run set.
func (s *pgStore) ReplaceRuns(ctx context.Context, runs []reruns.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM repetition_runs`); err != nil {
		return err
	}

	if len(runs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO repetition_runs (file_num, line_num, start_sent, length, hash)
VALUES ($1, $2, $3, $4, $5);
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, run := range runs {
			if _, err := stmt.ExecContext(ctx, run.FileNum, run.LineNum, run.StartSent, run.Length, int64(run.Hash)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// RunsForFile returns the detected runs for one file.
func (s *pgStore) RunsForFile(ctx context.Context, fileNum int) ([]reruns.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT file_num, line_num, start_sent, length, hash
FROM repetition_runs
WHERE file_num = $1
ORDER BY line_num, start_sent;
`, fileNum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []reruns.Run
	for rows.Next() {
		var run reruns.Run
		var hash int64
		if err := rows.Scan(&run.FileNum, &run.LineNum, &run.StartSent, &run.Length, &hash); err != nil {
			return nil, err
		}
		run.Hash = uint64(hash)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Counts summarizes the index contents.
func (s *pgStore) Counts(ctx context.Context) (reruns.Counts, error) {
	var c reruns.Counts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&c.Files); err != nil {
		return c, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&c.Sentences); err != nil {
		return c, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM repetition_runs`).Scan(&c.Runs); err != nil {
		return c, err
	}
	return c, nil
}
