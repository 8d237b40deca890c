package harness

import (
	"fmt"

	"github.com/roach88/respcheck/internal/failure"
)

// checkOutcome records err on sr and decides whether the step passed.
//
// A step without an expected failure passes when err is nil. A step with
// one passes only when err carries exactly that code.
func checkOutcome(sr *StepResult, err error) {
	if err != nil {
		sr.Code = failure.CodeOf(err)
		sr.Error = err.Error()
	}

	switch {
	case sr.Expected == "":
		sr.Pass = err == nil
	case err == nil:
		sr.Error = fmt.Sprintf("expected failure %s, but the step succeeded", sr.Expected)
	case sr.Code == sr.Expected:
		sr.Pass = true
	default:
		sr.Error = fmt.Sprintf("expected failure %s, got %s", sr.Expected, err.Error())
	}
}
