// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTransferMetrics(t *testing.T) {
	require := require.New(t)

	registry := prometheus.NewRegistry()
	m := NewTransferMetrics(registry)

	m.Executed(1, "ownership", time.Now())
	m.Executed(1, "ownership", time.Now())
	m.Rejected(2, "hash_mismatch", time.Now())

	require.Equal(2.0, testutil.ToFloat64(m.executedTransferCount.WithLabelValues("1", "ownership")))
	require.Equal(1.0, testutil.ToFloat64(m.rejectedTransferCount.WithLabelValues("2", "hash_mismatch")))
	require.Equal(2, testutil.CollectAndCount(m.transferLatencyMS))

	m.Initiated(3)
	m.SendingResult(3, 0)
	m.SendingResult(3, 0)
	require.Equal(1.0, testutil.ToFloat64(m.initiatedTransferCount.WithLabelValues("3")))
	require.Equal(2.0, testutil.ToFloat64(m.sendingResultCount.WithLabelValues("3", "0")))

	// double registration panics
	require.Panics(func() { NewTransferMetrics(registry) })
}
