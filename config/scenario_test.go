package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
num_nodes = 3
num_sinks = 1
seed = 5
duration_minutes = 60

[[edges]]
a = 0
b = 1

[[edges]]
a = 1
b = 2
`

func writeTempScenario(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDecodesScenario(t *testing.T) {
	path := writeTempScenario(t, sampleTOML)

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, s.NumNodes)
	require.Equal(t, 1, s.NumSinks)
	require.Len(t, s.Edges, 2)
	require.NoError(t, s.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidateCatchesMultipleProblems(t *testing.T) {
	s := &Scenario{NumNodes: 2, NumSinks: 5, DurationMinutes: 0, Edges: []Edge{{A: 0, B: 9}}}
	err := s.Validate()
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "num_sinks")
	require.Contains(t, msg, "duration_minutes")
	require.Contains(t, msg, "edge")
}

func TestToSimConfigCarriesEdgesAsVisibilityPairs(t *testing.T) {
	path := writeTempScenario(t, sampleTOML)
	s, err := Load(path)
	require.NoError(t, err)

	cfg := s.ToSimConfig()
	require.Len(t, cfg.VisibilityPairs, 2)
	require.Nil(t, cfg.Visibility)
}
