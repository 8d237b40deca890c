package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, suite, path, pass, cases, passed, started_at, finished_at, settings`

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec               RunRecord
		started, finished string
		settings          string
	)
	if err := row.Scan(&rec.ID, &rec.Suite, &rec.Path, &rec.Pass, &rec.CaseCount, &rec.Passed,
		&started, &finished, &settings); err != nil {
		return RunRecord{}, err
	}

	var err error
	if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	if rec.Settings, err = unmarshalSettings(settings); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns recorded runs, newest first. An empty suite lists every
// suite; a non-positive limit lists all runs.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, suite string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM suite_runs
		WHERE ? = '' OR suite = ?
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, suite, suite, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the header of one run without its cases.
func (s *Store) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM suite_runs WHERE id = ?`, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

// ReadCases returns the cases of a run in execution order, without steps.
func (s *Store) ReadCases(ctx context.Context, runID string) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, pass, run_dir, error, error_code, skipped
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := []CaseRecord{}
	for rows.Next() {
		var c CaseRecord
		if err := rows.Scan(&c.Seq, &c.Name, &c.Pass, &c.RunDir, &c.Error, &c.ErrorCode, &c.Skipped); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return cases, nil
}

// ReadSteps returns the steps of one case in execution order.
func (s *Store) ReadSteps(ctx context.Context, runID string, caseSeq int) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, name, args, pass, expected, code, error, duration_ns
		FROM step_results
		WHERE run_id = ? AND case_seq = ?
		ORDER BY seq ASC
	`, runID, caseSeq)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []StepRecord{}
	for rows.Next() {
		var (
			st       StepRecord
			args     string
			duration int64
		)
		if err := rows.Scan(&st.Seq, &st.Kind, &st.Name, &args, &st.Pass, &st.Expected, &st.Code, &st.Error, &duration); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if st.Args, err = unmarshalArgs(args); err != nil {
			return nil, err
		}
		st.Duration = time.Duration(duration)
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// LoadRun returns a run with all its cases and steps.
func (s *Store) LoadRun(ctx context.Context, runID string) (RunRecord, error) {
	rec, err := s.GetRun(ctx, runID)
	if err != nil {
		return RunRecord{}, err
	}
	if rec.Cases, err = s.ReadCases(ctx, runID); err != nil {
		return RunRecord{}, err
	}
	for i := range rec.Cases {
		if rec.Cases[i].Steps, err = s.ReadSteps(ctx, runID, rec.Cases[i].Seq); err != nil {
			return RunRecord{}, err
		}
	}
	return rec, nil
}
