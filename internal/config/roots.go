// Package config resolves the three base directories of the harness and the
// settings that tune comparisons.
//
// The roots are derived once and then passed explicitly to the stager and
// the comparator; nothing in this package keeps process-wide state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// WorkspaceEnv names the variable holding the workspace root.
const WorkspaceEnv = "WORKSPACE"

// workspaceSubdir is where the fixture trees live below a workspace root.
var workspaceSubdir = filepath.Join("tests", "robot")

// Roots holds the data, target and run base directories.
type Roots struct {
	// Data holds fixture input files.
	Data string `json:"data"`

	// Target holds the reference outputs, mirrored by Run.
	Target string `json:"target"`

	// Run is the scratch area where run directories are created.
	Run string `json:"run"`
}

// LookupFunc returns the value of a configuration variable.
// It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolve derives the roots from a workspace root.
//
// With a workspace the roots are workspace/tests/robot/{data,target,run};
// without one they fall back to cwd/{data,target,run}. A relative workspace
// is taken relative to cwd.
func Resolve(workspace, cwd string) Roots {
	base := cwd
	if workspace != "" {
		if !filepath.IsAbs(workspace) {
			workspace = filepath.Join(cwd, workspace)
		}
		base = filepath.Join(workspace, workspaceSubdir)
	}
	return Roots{
		Data:   filepath.Join(base, "data"),
		Target: filepath.Join(base, "target"),
		Run:    filepath.Join(base, "run"),
	}
}

// ResolveFromEnv resolves the roots using the WORKSPACE variable from lookup.
// An empty value counts as absent.
func ResolveFromEnv(lookup LookupFunc, cwd string) Roots {
	workspace, _ := lookup(WorkspaceEnv)
	return Resolve(workspace, cwd)
}

// Validate checks that the data and target roots exist.
// The run root is created on demand by the stager and is not checked.
func (r Roots) Validate() error {
	for _, dir := range []struct{ name, path string }{
		{"data", r.Data},
		{"target", r.Target},
	} {
		info, err := os.Stat(dir.path)
		if err != nil {
			return fmt.Errorf("%s root: %w", dir.name, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s root %s is not a directory", dir.name, dir.path)
		}
	}
	return nil
}

// expandPath expands a leading ~ and makes path absolute relative to cwd.
func expandPath(path, cwd string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(cwd, expanded)
	}
	return filepath.Clean(expanded), nil
}
