package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// DefaultTolerance is the tolerance used when a keyword omits one.
const DefaultTolerance = 1e-5

// Link modes for staging fixtures.
const (
	LinkSymlink = "symlink"
	LinkCopy    = "copy"
)

// Average modes for the average-deviation comparison.
const (
	AverageLastColumn = "last_column"
	AverageAllColumns = "all_columns"
)

// Settings tunes staging and comparison.
// Field names follow the keys of the CUE settings file.
type Settings struct {
	Workspace  string  `json:"workspace,omitempty"`
	DataRoot   string  `json:"data_root,omitempty"`
	TargetRoot string  `json:"target_root,omitempty"`
	RunRoot    string  `json:"run_root,omitempty"`
	Tolerance  float64 `json:"tolerance"`
	Link       string  `json:"link"`

	// ExtraFiles is how many run-directory files have no target counterpart
	// (the staged fixture, by convention).
	ExtraFiles int    `json:"extra_files"`
	Average    string `json:"average"`
}

// DefaultSettings returns the settings used without a settings file.
func DefaultSettings() Settings {
	return Settings{
		Tolerance:  DefaultTolerance,
		Link:       LinkSymlink,
		ExtraFiles: 1,
		Average:    AverageLastColumn,
	}
}

// LoadSettings reads a CUE settings file and validates it against the
// embedded schema. An empty path yields the schema defaults.
//
// Unknown fields are rejected, as are negative tolerances and unknown
// link or average modes.
func LoadSettings(path string) (Settings, error) {
	src := []byte("{}")
	filename := "defaults.cue"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		src = data
		filename = path
	}
	return parseSettings(src, filename)
}

func parseSettings(src []byte, filename string) (Settings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Settings{}, fmt.Errorf("compile settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	value := def.Unify(user)
	if err := value.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	var s Settings
	if err := value.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
