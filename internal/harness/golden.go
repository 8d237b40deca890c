package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/respcheck/internal/config"
)

// Summary renders a deterministic text report of result. Timings are
// omitted so the report can be compared across runs.
func Summary(result *Result) string {
	var b strings.Builder

	status := "PASS"
	if !result.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "suite %s: %s (%d/%d cases passed)\n", result.Suite, status, result.Passed(), len(result.Cases))

	for _, c := range result.Cases {
		status := "PASS"
		if !c.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %s %s\n", status, c.Name)

		for _, s := range c.Steps {
			mark := "ok  "
			if !s.Pass {
				mark = "FAIL"
			}
			fmt.Fprintf(&b, "    %s %s%s", mark, s.Name, formatArgs(s.Args))
			if s.Pass && s.Expected != "" {
				fmt.Fprintf(&b, " (failed as expected: %s)", s.Expected)
			}
			b.WriteString("\n")
			if !s.Pass {
				fmt.Fprintf(&b, "         %s\n", s.Error)
			}
		}
		if c.Skipped > 0 {
			fmt.Fprintf(&b, "    skipped %d step(s)\n", c.Skipped)
		}
	}
	return b.String()
}

func formatArgs(args []string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte(' ')
		if a == "" || strings.ContainsAny(a, " \t\"") {
			fmt.Fprintf(&b, "%q", a)
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}

// ScrubRoots replaces the root directories in text with <data>, <target>
// and <run>, so reports from temporary workspaces are stable.
func ScrubRoots(text string, roots config.Roots) string {
	return strings.NewReplacer(
		roots.Run, "<run>",
		roots.Target, "<target>",
		roots.Data, "<data>",
	).Replace(text)
}

// AssertGolden compares the summary of result against a golden file.
// The golden file is stored in testdata/golden/{name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result, roots config.Roots) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(ScrubRoots(Summary(result), roots)))
}
