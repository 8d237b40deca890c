package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Config is the resolved configuration for one process.
type Config struct {
	Roots    Roots
	Settings Settings
}

// Options controls how Load resolves the configuration.
type Options struct {
	// SettingsPath is an optional CUE settings file.
	SettingsPath string

	// EnvFile is an optional dotenv file consulted after the environment.
	// A missing file is ignored.
	EnvFile string

	// Workspace overrides every other source of the workspace root.
	Workspace string

	// Cwd is the fallback base directory. Defaults to os.Getwd().
	Cwd string

	// Lookup reads the environment. Defaults to os.LookupEnv.
	Lookup LookupFunc
}

// Load resolves roots and settings.
//
// Precedence for the workspace root: Options.Workspace, then the settings
// file, then the environment (dotenv values never override real variables),
// then the cwd fallback. Explicit data/target/run roots in the settings file
// replace the derived ones individually.
func Load(opts Options) (*Config, error) {
	cwd := opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		cwd = wd
	}

	settings, err := LoadSettings(opts.SettingsPath)
	if err != nil {
		return nil, err
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if opts.EnvFile != "" {
		dotenv, err := readEnvFile(opts.EnvFile)
		if err != nil {
			return nil, err
		}
		lookup = chainLookup(lookup, mapLookup(dotenv))
	}

	workspace := opts.Workspace
	if workspace == "" {
		workspace = settings.Workspace
	}
	if workspace == "" {
		workspace, _ = lookup(WorkspaceEnv)
	}
	workspace, err = expandPath(workspace, cwd)
	if err != nil {
		return nil, err
	}

	roots := Resolve(workspace, cwd)
	overrides := []struct {
		value string
		dst   *string
	}{
		{settings.DataRoot, &roots.Data},
		{settings.TargetRoot, &roots.Target},
		{settings.RunRoot, &roots.Run},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		p, err := expandPath(o.value, cwd)
		if err != nil {
			return nil, err
		}
		*o.dst = p
	}

	return &Config{Roots: roots, Settings: settings}, nil
}

// readEnvFile parses a dotenv file; a missing file yields no values.
func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// chainLookup returns the first non-empty value found.
func chainLookup(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, l := range lookups {
			if v, ok := l(key); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
}
