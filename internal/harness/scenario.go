package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/respcheck/internal/failure"
	"github.com/roach88/respcheck/internal/keyword"
)

// Suite is a named list of test cases loaded from one YAML file.
type Suite struct {
	// Name uniquely identifies this suite.
	Name string `yaml:"name"`

	// Description explains what this suite covers.
	Description string `yaml:"description,omitempty"`

	// Cases run in order.
	Cases []Case `yaml:"cases"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`
}

// Case is one test case: a staged run directory and the steps run in it.
type Case struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is a keyword call or a command. Exactly one of Keyword and Run is set.
type Step struct {
	// Keyword names a keyword; matching ignores case, spaces and underscores.
	Keyword string   `yaml:"keyword,omitempty"`
	Args    []string `yaml:"args,omitempty"`

	// Run is a command and its arguments, executed in the run directory.
	Run []string `yaml:"run,omitempty"`

	// Stdout names a run-directory file receiving the command's output.
	Stdout string `yaml:"stdout,omitempty"`

	// Fails is the failure code the step is expected to fail with.
	Fails string `yaml:"fails,omitempty"`
}

// Label is a short human-readable form of the step.
func (s Step) Label() string {
	if s.Keyword != "" {
		return s.Keyword
	}
	if len(s.Run) > 0 {
		return s.Run[0]
	}
	return "<empty>"
}

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	suite.Path = path
	return suite, nil
}

// ParseSuite decodes suite YAML and checks its structure.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos like "step:" for "steps:"
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// validateSuite checks that required fields are present and consistent.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if len(c.Steps) == 0 {
			return fmt.Errorf("cases[%d]: steps list is required and must be non-empty", i)
		}
		for j, step := range c.Steps {
			if err := validateStep(step); err != nil {
				return fmt.Errorf("cases[%d].steps[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func validateStep(s Step) error {
	switch {
	case s.Keyword != "" && len(s.Run) > 0:
		return fmt.Errorf("keyword and run are mutually exclusive")
	case s.Keyword == "" && len(s.Run) == 0:
		return fmt.Errorf("one of keyword or run is required")
	case s.Keyword != "" && s.Stdout != "":
		return fmt.Errorf("stdout only applies to run steps")
	case len(s.Run) > 0 && s.Run[0] == "":
		return fmt.Errorf("run: command is empty")
	}
	if s.Fails != "" && !failure.Code(s.Fails).Valid() {
		return fmt.Errorf("fails: unknown failure code %q", s.Fails)
	}
	return nil
}

// CheckKeywords verifies that every keyword step names a known keyword with
// an acceptable number of arguments.
func CheckKeywords(s *Suite, lib *keyword.Library) error {
	for i, c := range s.Cases {
		for j, step := range c.Steps {
			if step.Keyword == "" {
				continue
			}
			if err := lib.Check(step.Keyword, len(step.Args)); err != nil {
				return fmt.Errorf("cases[%d].steps[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}
