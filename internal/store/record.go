package store

import "github.com/roach88/respcheck/internal/harness"

// FromResult converts a harness result into a record ready for RecordRun.
func FromResult(result *harness.Result, settings map[string]string) RunRecord {
	rec := RunRecord{
		Suite:      result.Suite,
		Path:       result.Path,
		Pass:       result.Pass,
		CaseCount:  len(result.Cases),
		Passed:     result.Passed(),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Settings:   settings,
		Cases:      make([]CaseRecord, len(result.Cases)),
	}
	for i, c := range result.Cases {
		cr := CaseRecord{
			Seq:       i,
			Name:      c.Name,
			Pass:      c.Pass,
			RunDir:    c.RunDir,
			Error:     c.Error,
			ErrorCode: string(c.ErrorCode),
			Skipped:   c.Skipped,
			Steps:     make([]StepRecord, len(c.Steps)),
		}
		for j, s := range c.Steps {
			cr.Steps[j] = StepRecord{
				Seq:      j,
				Kind:     s.Kind,
				Name:     s.Name,
				Args:     s.Args,
				Pass:     s.Pass,
				Expected: string(s.Expected),
				Code:     string(s.Code),
				Error:    s.Error,
				Duration: s.Duration,
			}
		}
		rec.Cases[i] = cr
	}
	return rec
}
