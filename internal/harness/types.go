package harness

import (
	"time"

	"github.com/roach88/respcheck/internal/failure"
)

// Step kinds.
const (
	KindKeyword = "keyword"
	KindRun     = "run"
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`

	// Pass is true when the step had its expected outcome.
	Pass bool `json:"pass"`

	// Expected is the failure code the step was declared to fail with.
	Expected failure.Code `json:"expected,omitempty"`

	// Code and Error describe the failure the step produced, if any.
	Code  failure.Code `json:"code,omitempty"`
	Error string       `json:"error,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name   string       `json:"name"`
	Pass   bool         `json:"pass"`
	RunDir string       `json:"run_dir,omitempty"`
	Steps  []StepResult `json:"steps"`

	// Error and ErrorCode repeat the failure of the step that stopped the case.
	Error     string       `json:"error,omitempty"`
	ErrorCode failure.Code `json:"error_code,omitempty"`

	// Skipped counts steps not run after the case stopped.
	Skipped int `json:"skipped,omitempty"`
}

// Result is the outcome of a suite execution.
type Result struct {
	Suite      string       `json:"suite"`
	Path       string       `json:"path,omitempty"`
	Pass       bool         `json:"pass"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Cases      []CaseResult `json:"cases"`
}

// NewResult creates a passing result with no cases.
func NewResult(suite *Suite) *Result {
	return &Result{
		Suite: suite.Name,
		Path:  suite.Path,
		Pass:  true,
		Cases: []CaseResult{},
	}
}

// AddCase appends a case outcome and fails the result if the case failed.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Passed returns the number of passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}
