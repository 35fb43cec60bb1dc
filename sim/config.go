package sim

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/johannesneyer/lightning/common/log"
	"github.com/johannesneyer/lightning/protocol"
)

// Config describes one simulator run: topology, visibility, timing and
// error-injection parameters (spec §4.3). It is the in-memory
// counterpart of a scenario file (config.Scenario.ToSimConfig loads one
// of these from TOML).
type Config struct {
	NumNodes int
	// NumSinks assigns the sink role to node ids [0, NumSinks), mirroring
	// the original's "vector index is node id, first N are sinks"
	// convention.
	NumSinks int

	Seed            uint64
	DurationMinutes int

	AreaSize        int64
	MinNodeDistance int64
	RangeMeters     float64

	// VisibilityPairs, if non-empty, replaces distance-based visibility
	// with a fixed undirected graph over node ids — the form scenarios
	// S2 and S3 use.
	VisibilityPairs [][2]protocol.NodeId
	// Visibility, if set, overrides both distance- and graph-based
	// visibility entirely.
	Visibility VisibilityFunc

	// PacketErrorRatePPT, if set, drops each surviving recipient of a
	// forwarded message independently with this probability in parts per
	// thousand.
	PacketErrorRatePPT *uint32

	// StartupDelayRangeMS bounds each node's initial random jitter,
	// mimicking asynchronous power-on. Zero selects
	// DefaultStartupDelayRangeMS.
	StartupDelayRangeMS protocol.TimeMs

	// EventLog, if set, receives the textual event log (spec §6) for
	// every node in the run.
	EventLog io.Writer
	Logger   log.Logger
}

func (cfg Config) validate() error {
	var result *multierror.Error
	if cfg.NumNodes <= 0 {
		result = multierror.Append(result, fmt.Errorf("numNodes must be positive, got %d", cfg.NumNodes))
	}
	if cfg.NumSinks < 0 || cfg.NumSinks > cfg.NumNodes {
		result = multierror.Append(result, fmt.Errorf("numSinks (%d) must be between 0 and numNodes (%d)", cfg.NumSinks, cfg.NumNodes))
	}
	if cfg.DurationMinutes <= 0 {
		result = multierror.Append(result, fmt.Errorf("durationMinutes must be positive, got %d", cfg.DurationMinutes))
	}
	if cfg.PacketErrorRatePPT != nil && *cfg.PacketErrorRatePPT > 1000 {
		result = multierror.Append(result, fmt.Errorf("packetErrorRatePPT must be <= 1000 parts-per-thousand, got %d", *cfg.PacketErrorRatePPT))
	}
	return result.ErrorOrNil()
}
