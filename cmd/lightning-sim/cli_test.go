package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := output
	output = &buf
	defer func() { output = old }()

	app := CLI()
	err := app.Run(append([]string{"lightning-sim"}, args...))
	return buf.String(), err
}

func TestListScenarios(t *testing.T) {
	out, err := runApp(t, "list-scenarios")
	require.NoError(t, err)
	require.Contains(t, out, "s1")
	require.Contains(t, out, "s4")
}

func TestRunRequiresScenarioOrConfig(t *testing.T) {
	_, err := runApp(t, "run")
	require.Error(t, err)
}

func TestRunRejectsBothScenarioAndConfig(t *testing.T) {
	_, err := runApp(t, "run", "--scenario", "s1", "--config", "whatever.toml")
	require.Error(t, err)
}

func TestRunScenarioS1PrintsUplinkedData(t *testing.T) {
	out, err := runApp(t, "run", "--scenario", "s1")
	require.NoError(t, err)
	require.Contains(t, out, "source=1")
	require.Contains(t, out, "nodes reported")
}

func TestRunUnknownScenario(t *testing.T) {
	_, err := runApp(t, "run", "--scenario", "bogus")
	require.Error(t, err)
}
