package store

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one recorded suite run.
type RunRecord struct {
	ID         string            `json:"id"`
	Suite      string            `json:"suite"`
	Path       string            `json:"path,omitempty"`
	Pass       bool              `json:"pass"`
	CaseCount  int               `json:"cases"`
	Passed     int               `json:"passed"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Settings   map[string]string `json:"settings,omitempty"`

	// Cases is only filled by RecordRun callers and LoadRun.
	Cases []CaseRecord `json:"case_results,omitempty"`
}

// CaseRecord is one recorded case of a run.
type CaseRecord struct {
	Seq       int          `json:"seq"`
	Name      string       `json:"name"`
	Pass      bool         `json:"pass"`
	RunDir    string       `json:"run_dir,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
	Skipped   int          `json:"skipped,omitempty"`
	Steps     []StepRecord `json:"steps,omitempty"`
}

// StepRecord is one recorded step of a case.
type StepRecord struct {
	Seq      int           `json:"seq"`
	Kind     string        `json:"kind"`
	Name     string        `json:"name"`
	Args     []string      `json:"args,omitempty"`
	Pass     bool          `json:"pass"`
	Expected string        `json:"expected,omitempty"`
	Code     string        `json:"code,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// timeLayout keeps stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// RecordRun writes rec with all its cases and steps in one transaction and
// returns the run ID. An empty rec.ID is filled from the ID generator.
// Case and step sequence numbers are assigned from slice order.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = s.ids.Generate()
	}
	settings, err := marshalSettings(rec.Settings)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	passed := 0
	for _, c := range rec.Cases {
		if c.Pass {
			passed++
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO suite_runs
		(id, suite, path, pass, cases, passed, started_at, finished_at, settings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Suite,
		rec.Path,
		rec.Pass,
		len(rec.Cases),
		passed,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		settings,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for i, c := range rec.Cases {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO case_results
			(run_id, seq, name, pass, run_dir, error, error_code, skipped)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, i, c.Name, c.Pass, c.RunDir, c.Error, c.ErrorCode, c.Skipped)
		if err != nil {
			return "", fmt.Errorf("record case %q: %w", c.Name, err)
		}

		for j, step := range c.Steps {
			args, err := marshalArgs(step.Args)
			if err != nil {
				return "", fmt.Errorf("record case %q step %d: %w", c.Name, j, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO step_results
				(run_id, case_seq, seq, kind, name, args, pass, expected, code, error, duration_ns)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, rec.ID, i, j, step.Kind, step.Name, args, step.Pass, step.Expected, step.Code, step.Error, int64(step.Duration))
			if err != nil {
				return "", fmt.Errorf("record case %q step %d: %w", c.Name, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return rec.ID, nil
}
