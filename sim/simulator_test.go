package sim

import (
	"testing"

	"github.com/johannesneyer/lightning/protocol"
	"github.com/stretchr/testify/require"
)

func sources(data []protocol.NodeData) map[protocol.NodeId]bool {
	out := map[protocol.NodeId]bool{}
	for _, d := range data {
		out[d.Source] = true
	}
	return out
}

// TestScenarioS1TwoNodeFullVisibility is spec §8 scenario S1.
func TestScenarioS1TwoNodeFullVisibility(t *testing.T) {
	cfg, ok := ScenarioByName(ScenarioS1)
	require.True(t, ok)

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	data, err := s.Run()
	require.NoError(t, err)
	require.True(t, sources(data)[1], "leaf node 1 never appeared as a source")
}

// TestScenarioS2ThreeNodeChain is spec §8 scenario S2.
func TestScenarioS2ThreeNodeChain(t *testing.T) {
	cfg, ok := ScenarioByName(ScenarioS2)
	require.True(t, ok)

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	data, err := s.Run()
	require.NoError(t, err)
	got := sources(data)
	require.True(t, got[1])
	require.True(t, got[2])
}

// TestScenarioS3FourNodeChain is spec §8 scenario S3.
func TestScenarioS3FourNodeChain(t *testing.T) {
	cfg, ok := ScenarioByName(ScenarioS3)
	require.True(t, ok)

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	data, err := s.Run()
	require.NoError(t, err)
	got := sources(data)
	for n := protocol.NodeId(1); n <= 3; n++ {
		require.True(t, got[n], "node %d never appeared as a source", n)
	}
}

// TestScenarioS4StarFullVisibility is spec §8 scenario S4.
func TestScenarioS4StarFullVisibility(t *testing.T) {
	cfg, ok := ScenarioByName(ScenarioS4)
	require.True(t, ok)

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	data, err := s.Run()
	require.NoError(t, err)
	got := sources(data)
	for n := protocol.NodeId(1); n <= 4; n++ {
		require.True(t, got[n], "leaf %d never appeared as a source", n)
	}
}

func TestSimulatorRejectsInvalidConfig(t *testing.T) {
	_, err := NewSimulator(Config{NumNodes: 0, NumSinks: 0, DurationMinutes: 10})
	require.Error(t, err)

	_, err = NewSimulator(Config{NumNodes: 2, NumSinks: 5, DurationMinutes: 10})
	require.Error(t, err)
}

func TestSimulatorNeverUplinksFromNonSinks(t *testing.T) {
	cfg, ok := ScenarioByName(ScenarioS4)
	require.True(t, ok)

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	_, err = s.Run()
	require.NoError(t, err)
	// the star's only sink is node 0 (spec §8 property 4); an error-free
	// Run return already exercises the invariant check inside
	// ProtocolWrapper.Progress.
	require.False(t, s.Nodes()[0].IsSink() == false)
}
