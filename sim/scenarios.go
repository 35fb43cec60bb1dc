package sim

import "github.com/johannesneyer/lightning/protocol"

// Scenario names a built-in preset from spec §8's concrete-scenarios
// table. ScenarioByName resolves one to a ready-to-run Config; the CLI
// accepts these names directly (SPEC_FULL.md supplemented feature 3).
type Scenario string

const (
	ScenarioS1 Scenario = "s1" // two-node: 1 sink, 1 leaf, full visibility
	ScenarioS2 Scenario = "s2" // three-node chain
	ScenarioS3 Scenario = "s3" // four-node chain
	ScenarioS4 Scenario = "s4" // star: 1 sink + 4 leaves, full visibility
)

// Scenarios lists every built-in scenario name, in the order spec §8
// presents them.
var Scenarios = []Scenario{ScenarioS1, ScenarioS2, ScenarioS3, ScenarioS4}

// ScenarioByName returns the Config for a built-in scenario, or ok=false
// if name isn't one.
func ScenarioByName(name Scenario) (Config, bool) {
	switch name {
	case ScenarioS1:
		return Config{
			NumNodes:        2,
			NumSinks:        1,
			Seed:            0,
			DurationMinutes: 60,
			Visibility:      func(a, b *ProtocolWrapper) bool { return true },
		}, true

	case ScenarioS2:
		return Config{
			NumNodes:        3,
			NumSinks:        1,
			Seed:            0,
			DurationMinutes: 60,
			VisibilityPairs: [][2]protocol.NodeId{{0, 1}, {1, 2}},
		}, true

	case ScenarioS3:
		return Config{
			NumNodes:        4,
			NumSinks:        1,
			Seed:            0,
			DurationMinutes: 60,
			VisibilityPairs: [][2]protocol.NodeId{{0, 1}, {1, 2}, {2, 3}},
		}, true

	case ScenarioS4:
		return Config{
			NumNodes:        5,
			NumSinks:        1,
			Seed:            0,
			DurationMinutes: 120,
			Visibility:      func(a, b *ProtocolWrapper) bool { return true },
		}, true

	default:
		return Config{}, false
	}
}
