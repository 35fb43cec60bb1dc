// Package config loads simulator scenario files from TOML, the format
// the teacher repo uses for its own group and key files (key/group.go,
// store.go).
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/johannesneyer/lightning/protocol"
	"github.com/johannesneyer/lightning/sim"
)

// Edge is one entry of a [[edges]] table, naming two node ids that can
// hear one another. Present only for scenarios using a fixed visibility
// graph rather than distance.
type Edge struct {
	A uint32 `toml:"a"`
	B uint32 `toml:"b"`
}

// Scenario is the TOML-decodable description of one simulator run.
// Zero-valued fields fall back to sim's defaults, mirroring how the
// teacher's GroupTOML leaves a nil PublicKey when no DKG has run yet.
type Scenario struct {
	NumNodes        int    `toml:"num_nodes"`
	NumSinks        int    `toml:"num_sinks"`
	Seed            uint64 `toml:"seed"`
	DurationMinutes int    `toml:"duration_minutes"`

	AreaSize        int64   `toml:"area_size"`
	MinNodeDistance int64   `toml:"min_node_distance"`
	RangeMeters     float64 `toml:"range_meters"`

	Edges []Edge `toml:"edges"`

	PacketErrorRatePPT  *uint32 `toml:"packet_error_rate_ppt"`
	StartupDelayRangeMS uint64  `toml:"startup_delay_range_ms"`
}

// Load reads and decodes a scenario from a TOML file at path, grounded on
// the teacher's FileStore.Load (store.go): decode into a throwaway value,
// confirm the file actually exists before trusting a zero-valued decode.
func Load(path string) (*Scenario, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: scenario file %s: %w", path, err)
	}
	s := new(Scenario)
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return s, nil
}

// String renders the scenario back to TOML, mirroring Group.String.
func (s *Scenario) String() string {
	var b bytes.Buffer
	toml.NewEncoder(&b).Encode(s)
	return b.String()
}

// Validate aggregates every problem with the scenario into one error,
// grounded on sim.Config.validate's use of multierror.
func (s *Scenario) Validate() error {
	var result *multierror.Error
	if s.NumNodes <= 0 {
		result = multierror.Append(result, fmt.Errorf("num_nodes must be positive, got %d", s.NumNodes))
	}
	if s.NumSinks < 0 || s.NumSinks > s.NumNodes {
		result = multierror.Append(result, fmt.Errorf("num_sinks (%d) must be between 0 and num_nodes (%d)", s.NumSinks, s.NumNodes))
	}
	if s.DurationMinutes <= 0 {
		result = multierror.Append(result, fmt.Errorf("duration_minutes must be positive, got %d", s.DurationMinutes))
	}
	for _, e := range s.Edges {
		if int(e.A) >= s.NumNodes || int(e.B) >= s.NumNodes {
			result = multierror.Append(result, fmt.Errorf("edge (%d, %d) references a node id >= num_nodes (%d)", e.A, e.B, s.NumNodes))
		}
	}
	return result.ErrorOrNil()
}

// ToSimConfig converts a validated scenario into a sim.Config ready for
// sim.NewSimulator.
func (s *Scenario) ToSimConfig() sim.Config {
	cfg := sim.Config{
		NumNodes:            s.NumNodes,
		NumSinks:            s.NumSinks,
		Seed:                s.Seed,
		DurationMinutes:     s.DurationMinutes,
		AreaSize:            s.AreaSize,
		MinNodeDistance:     s.MinNodeDistance,
		RangeMeters:         s.RangeMeters,
		PacketErrorRatePPT:  s.PacketErrorRatePPT,
		StartupDelayRangeMS: protocol.TimeMs(s.StartupDelayRangeMS),
	}
	if len(s.Edges) > 0 {
		pairs := make([][2]protocol.NodeId, len(s.Edges))
		for i, e := range s.Edges {
			pairs[i] = [2]protocol.NodeId{protocol.NodeId(e.A), protocol.NodeId(e.B)}
		}
		cfg.VisibilityPairs = pairs
	}
	return cfg
}
