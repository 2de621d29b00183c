// Package metrics defines the speaker's prometheus instrumentation: PDUs
// seen by type and direction, checksum outcomes, adjacency and LSDB
// sizes, and PSNP request volume. Grounded on the package-level
// promauto-registered var block style used for netlink polling
// instrumentation elsewhere in the pack, generalized from socket-monitor
// counters to IS-IS PDU accounting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PDUsReceived counts decoded inbound PDUs by message type name.
	PDUsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isisd_pdus_received_total",
			Help: "PDUs received, by message type",
		},
		[]string{"msg_type"})

	// PDUsSent counts emitted outbound PDUs by message type name.
	PDUsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isisd_pdus_sent_total",
			Help: "PDUs sent, by message type",
		},
		[]string{"msg_type"})

	// ChecksumFailures counts LSPs whose checksum failed to validate.
	ChecksumFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "isisd_lsp_checksum_failures_total",
			Help: "LSPs received with an invalid checksum",
		})

	// AdjacenciesByState tracks the current adjacency count per state per
	// adjacency type (L1, L2, PP).
	AdjacenciesByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "isisd_adjacencies",
			Help: "current adjacency count by type and state",
		},
		[]string{"type", "state"})

	// LSDBSize tracks the number of records currently held in the LSDB,
	// including placeholders.
	LSDBSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "isisd_lsdb_size",
			Help: "number of records currently held in the link-state database",
		})

	// PSNPRequestsIssued counts LSP entries added to a PSNP request list
	// after a CSNP diff.
	PSNPRequestsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "isisd_psnp_requests_issued_total",
			Help: "LSP entries requested via PSNP after a CSNP diff",
		})
)
