package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envWith(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestResolve_WithWorkspace(t *testing.T) {
	roots := Resolve("/ws", "/elsewhere")

	assert.Equal(t, filepath.Join("/ws", "tests", "robot", "data"), roots.Data)
	assert.Equal(t, filepath.Join("/ws", "tests", "robot", "target"), roots.Target)
	assert.Equal(t, filepath.Join("/ws", "tests", "robot", "run"), roots.Run)
}

func TestResolve_FallsBackToCwd(t *testing.T) {
	roots := Resolve("", "/cwd")

	assert.Equal(t, Roots{
		Data:   filepath.Join("/cwd", "data"),
		Target: filepath.Join("/cwd", "target"),
		Run:    filepath.Join("/cwd", "run"),
	}, roots)
}

func TestResolve_RelativeWorkspace(t *testing.T) {
	roots := Resolve("ws", "/cwd")
	assert.Equal(t, filepath.Join("/cwd", "ws", "tests", "robot", "run"), roots.Run)
}

func TestResolveFromEnv(t *testing.T) {
	roots := ResolveFromEnv(envWith(map[string]string{WorkspaceEnv: "/ws"}), "/cwd")
	assert.Equal(t, filepath.Join("/ws", "tests", "robot", "data"), roots.Data)

	roots = ResolveFromEnv(envWith(map[string]string{WorkspaceEnv: ""}), "/cwd")
	assert.Equal(t, filepath.Join("/cwd", "data"), roots.Data)
}

func TestRoots_Validate(t *testing.T) {
	dir := t.TempDir()
	roots := Resolve("", dir)

	require.Error(t, roots.Validate())

	require.NoError(t, os.MkdirAll(roots.Data, 0755))
	require.NoError(t, os.MkdirAll(roots.Target, 0755))
	assert.NoError(t, roots.Validate())
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respcheck.cue")
	content := `
workspace: "/ws"
tolerance: 0.001
link: "copy"
extra_files: 2
average: "all_columns"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/ws", s.Workspace)
	assert.InDelta(t, 0.001, s.Tolerance, 1e-12)
	assert.Equal(t, LinkCopy, s.Link)
	assert.Equal(t, 2, s.ExtraFiles)
	assert.Equal(t, AverageAllColumns, s.Average)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative tolerance", `tolerance: -1`},
		{"unknown link mode", `link: "hardlink"`},
		{"unknown field", `tolerence: 0.1`},
		{"negative extra files", `extra_files: -1`},
		{"syntax error", `tolerance: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.cue")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadSettings(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read settings file")
}

func TestLoad_Precedence(t *testing.T) {
	cwd := t.TempDir()

	envFile := filepath.Join(cwd, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WORKSPACE=/from-dotenv\n"), 0644))

	// dotenv applies when the environment has nothing
	cfg, err := Load(Options{Cwd: cwd, EnvFile: envFile, Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/from-dotenv", "tests", "robot", "data"), cfg.Roots.Data)

	// the real environment wins over dotenv
	cfg, err = Load(Options{
		Cwd:     cwd,
		EnvFile: envFile,
		Lookup:  envWith(map[string]string{WorkspaceEnv: "/from-env"}),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/from-env", "tests", "robot", "data"), cfg.Roots.Data)

	// the settings file wins over the environment
	settingsPath := filepath.Join(cwd, "respcheck.cue")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`workspace: "/from-settings"`), 0644))
	cfg, err = Load(Options{
		Cwd:          cwd,
		SettingsPath: settingsPath,
		Lookup:       envWith(map[string]string{WorkspaceEnv: "/from-env"}),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/from-settings", "tests", "robot", "data"), cfg.Roots.Data)

	// the explicit option wins over everything
	cfg, err = Load(Options{
		Cwd:          cwd,
		SettingsPath: settingsPath,
		Workspace:    "/from-flag",
		Lookup:       envWith(map[string]string{WorkspaceEnv: "/from-env"}),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/from-flag", "tests", "robot", "data"), cfg.Roots.Data)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cwd := t.TempDir()
	cfg, err := Load(Options{Cwd: cwd, EnvFile: filepath.Join(cwd, "nope.env"), Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "run"), cfg.Roots.Run)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
}

func TestLoad_RootOverrides(t *testing.T) {
	cwd := t.TempDir()
	settingsPath := filepath.Join(cwd, "respcheck.cue")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`run_root: "scratch"`), 0644))

	cfg, err := Load(Options{Cwd: cwd, SettingsPath: settingsPath, Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "scratch"), cfg.Roots.Run)
	assert.Equal(t, filepath.Join(cwd, "data"), cfg.Roots.Data)
}

func TestLoad_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Load(Options{Cwd: t.TempDir(), Workspace: "~/ws", Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ws", "tests", "robot", "data"), cfg.Roots.Data)
}
