// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type TransferMetrics struct {
	executedTransferCount *prometheus.CounterVec
	rejectedTransferCount *prometheus.CounterVec
	transferLatencyMS     *prometheus.HistogramVec

	initiatedTransferCount *prometheus.CounterVec
	sendingResultCount     *prometheus.CounterVec
}

func NewTransferMetrics(registerer prometheus.Registerer) *TransferMetrics {
	m := TransferMetrics{
		executedTransferCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_executed_total",
				Help: "Number of inbound transfers that executed",
			},
			[]string{"source_chain_id", "kind"},
		),
		rejectedTransferCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_rejected_total",
				Help: "Number of inbound transfers that were rejected",
			},
			[]string{"source_chain_id", "reason"},
		),
		transferLatencyMS: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transfer_latency_ms",
				Help:    "Latency of processing an inbound transfer in milliseconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"outcome"},
		),
		initiatedTransferCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_initiated_total",
				Help: "Number of outbound transfers initiated",
			},
			[]string{"destination_chain_id"},
		),
		sendingResultCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_sending_results_total",
				Help: "Number of outbound delivery results reported by relays",
			},
			[]string{"destination_chain_id", "status_code"},
		),
	}

	registerer.MustRegister(m.executedTransferCount)
	registerer.MustRegister(m.rejectedTransferCount)
	registerer.MustRegister(m.transferLatencyMS)
	registerer.MustRegister(m.initiatedTransferCount)
	registerer.MustRegister(m.sendingResultCount)

	return &m
}

func (m *TransferMetrics) Executed(sourceChainID uint64, kind string, started time.Time) {
	m.executedTransferCount.WithLabelValues(chainLabel(sourceChainID), kind).Inc()
	m.transferLatencyMS.WithLabelValues("executed").Observe(sinceMS(started))
}

func (m *TransferMetrics) Rejected(sourceChainID uint64, reason string, started time.Time) {
	m.rejectedTransferCount.WithLabelValues(chainLabel(sourceChainID), reason).Inc()
	m.transferLatencyMS.WithLabelValues("rejected").Observe(sinceMS(started))
}

func (m *TransferMetrics) Initiated(destinationChainID uint64) {
	m.initiatedTransferCount.WithLabelValues(chainLabel(destinationChainID)).Inc()
}

func (m *TransferMetrics) SendingResult(destinationChainID uint64, statusCode uint8) {
	m.sendingResultCount.WithLabelValues(chainLabel(destinationChainID), strconv.Itoa(int(statusCode))).Inc()
}

func chainLabel(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

func sinceMS(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000
}
