package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/respcheck/internal/testutil"
)

// createTestStore creates a new store in a temp dir with predictable run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewFixedIDGenerator("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a two-case run starting at start.
func createTestRun(suite string, start time.Time) RunRecord {
	return RunRecord{
		Suite:      suite,
		Path:       "suites/" + suite + ".yaml",
		Pass:       false,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Settings:   map[string]string{"tolerance": "1e-05", "link": "symlink"},
		Cases: []CaseRecord{
			{
				Name:   "simple",
				Pass:   true,
				RunDir: "/w/run/response/simple",
				Steps: []StepRecord{
					{Kind: "keyword", Name: "prepare", Args: []string{"response/simple", "simple", "RESP"}, Pass: true, Duration: time.Millisecond},
					{Kind: "run", Name: "evalresp", Args: []string{"ANMO", "BHZ"}, Pass: true, Duration: 2 * time.Second},
				},
			},
			{
				Name:      "drift",
				Pass:      false,
				Error:     "ToleranceExceeded: 2 and 2.1 differ",
				ErrorCode: "ToleranceExceeded",
				Skipped:   1,
				Steps: []StepRecord{
					{Kind: "keyword", Name: "compareTwoFloatCols", Args: []string{"response/drift", "", "AMP"},
						Code: "ToleranceExceeded", Error: "ToleranceExceeded: 2 and 2.1 differ"},
				},
			},
		},
	}
}
