package punchgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCreate is called after each create operation.
	// duration is the total time taken, err is nil if successful.
	RecordCreate(duration time.Duration, err error)

	// RecordClaim is called after each claim operation.
	// count is the number of indices in the batch, duration is the total
	// time taken, err is nil if successful.
	RecordClaim(count int, duration time.Duration, err error)

	// RecordReclaim is called when a fully punched record is closed and
	// its deposit returned.
	RecordReclaim(deposit uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(time.Duration, error)     {}
func (NoopMetricsCollector) RecordClaim(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReclaim(uint64)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CreateCount      atomic.Int64
	CreateErrors     atomic.Int64
	CreateTotalNanos atomic.Int64
	ClaimCount       atomic.Int64
	ClaimIndices     atomic.Int64
	ClaimErrors      atomic.Int64
	ClaimTotalNanos  atomic.Int64
	ReclaimCount     atomic.Int64
	ReclaimedDeposit atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(duration time.Duration, err error) {
	b.CreateCount.Add(1)
	b.CreateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

// RecordClaim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClaim(count int, duration time.Duration, err error) {
	b.ClaimCount.Add(1)
	b.ClaimIndices.Add(int64(count))
	b.ClaimTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClaimErrors.Add(1)
	}
}

// RecordReclaim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReclaim(deposit uint64) {
	b.ReclaimCount.Add(1)
	b.ReclaimedDeposit.Add(int64(deposit)) //nolint:gosec
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount:      b.CreateCount.Load(),
		CreateErrors:     b.CreateErrors.Load(),
		CreateAvgNanos:   avgNanos(b.CreateTotalNanos.Load(), b.CreateCount.Load()),
		ClaimCount:       b.ClaimCount.Load(),
		ClaimIndices:     b.ClaimIndices.Load(),
		ClaimErrors:      b.ClaimErrors.Load(),
		ClaimAvgNanos:    avgNanos(b.ClaimTotalNanos.Load(), b.ClaimCount.Load()),
		ReclaimCount:     b.ReclaimCount.Load(),
		ReclaimedDeposit: b.ReclaimedDeposit.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CreateCount      int64
	CreateErrors     int64
	CreateAvgNanos   int64
	ClaimCount       int64
	ClaimIndices     int64
	ClaimErrors      int64
	ClaimAvgNanos    int64
	ReclaimCount     int64
	ReclaimedDeposit int64
}
