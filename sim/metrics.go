package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the simulator harness's Prometheus counters (spec
// §4.3, SPEC_FULL.md Domain Stack), grounded on the teacher's
// internal/metrics package: one registry holding plain counters,
// constructed once per run rather than reached for as a global so
// concurrent simulator runs in the same process don't collide.
type Metrics struct {
	Registry *prometheus.Registry

	Collisions          prometheus.Counter
	CorruptedReceptions prometheus.Counter
	DroppedPackets      prometheus.Counter
	Joins               prometheus.Counter
	UplinkedBatches     prometheus.Counter
	UplinkedNodeData    prometheus.Counter
}

// NewMetrics builds a fresh, independently registered Metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_collisions_total",
			Help: "Number of in-air transmission overlaps that corrupted a reception.",
		}),
		CorruptedReceptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_corrupted_receptions_total",
			Help: "Number of receptions delivered to a node as silence due to collision.",
		}),
		DroppedPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_dropped_packets_total",
			Help: "Number of recipients dropped by the packet error rate model.",
		}),
		Joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_joins_total",
			Help: "Number of connect handshakes accepted by a parent.",
		}),
		UplinkedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_uplinked_batches_total",
			Help: "Number of non-empty uplink batches drained from sinks.",
		}),
		UplinkedNodeData: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lightning_sim_uplinked_node_data_total",
			Help: "Total NodeData entries observed across all uplink batches.",
		}),
	}
	m.Registry.MustRegister(
		m.Collisions,
		m.CorruptedReceptions,
		m.DroppedPackets,
		m.Joins,
		m.UplinkedBatches,
		m.UplinkedNodeData,
	)
	return m
}
