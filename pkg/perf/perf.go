// Package perf holds performance budgets and cross-package benchmarks for
// the pipeline's hot paths: bus publish under back-pressure, the reducer,
// store notification, and frame rendering. All private helpers are prefixed
// with "pf" to avoid naming conflicts.
package perf

import "testing"

// Threshold defines a performance budget for a named operation. Benchmarks
// that exceed these thresholds indicate a regression that should be
// investigated before merging.
type Threshold struct {
	// Name identifies the operation (matches a benchmark suffix).
	Name string

	// MaxNs is the maximum allowed nanoseconds per operation.
	MaxNs int64

	// MaxAlloc is the maximum allowed bytes allocated per operation.
	MaxAlloc int64
}

// Violation records a threshold breach for a specific benchmark.
type Violation struct {
	// Threshold is the budget that was exceeded.
	Threshold Threshold

	// Actual is the measured value that exceeded the threshold.
	Actual int64

	// Field indicates which metric was violated: "ns" for time or "alloc"
	// for memory allocation.
	Field string
}

// DefaultThresholds returns the performance budgets for the pipeline's
// critical paths on a typical development machine.
//
// Budget rationale:
//   - bus_publish < 1us: runs on every adapter emission, holds the bus lock
//   - reduce_workspace < 10us: full snapshot copy plus ordered upsert
//   - store_apply < 50us: reduce + validate + one clone per observer set
//   - snapshot_clone < 20us: paid once per notification fan-out
//   - frame_render < 5ms: one complete dashboard frame at 100x30
//   - component budgets: single-line primitives inside the frame loop
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Name: "bus_publish", MaxNs: 1_000, MaxAlloc: 512},
		{Name: "bus_roundtrip", MaxNs: 5_000, MaxAlloc: 1024},
		{Name: "reduce_workspace", MaxNs: 10_000, MaxAlloc: 16384},
		{Name: "reduce_stats", MaxNs: 10_000, MaxAlloc: 16384},
		{Name: "snapshot_clone", MaxNs: 20_000, MaxAlloc: 32768},
		{Name: "store_apply", MaxNs: 50_000, MaxAlloc: 65536},
		{Name: "frame_render", MaxNs: 5_000_000, MaxAlloc: 1_048_576},
		{Name: "component_gauge", MaxNs: 100_000, MaxAlloc: 8192},
		{Name: "component_sparkline", MaxNs: 200_000, MaxAlloc: 16384},
		{Name: "component_box", MaxNs: 500_000, MaxAlloc: 32768},
		{Name: "text_truncate", MaxNs: 50_000, MaxAlloc: 4096},
		{Name: "visible_len", MaxNs: 50_000, MaxAlloc: 2048},
	}
}

// CheckRegression compares benchmark results against thresholds and returns
// all violations found. A violation occurs when either the nanoseconds per
// operation exceed MaxNs or the bytes allocated per operation exceed
// MaxAlloc. Results match thresholds by position, up to the shorter slice.
func CheckRegression(results []testing.BenchmarkResult, thresholds []Threshold) []Violation {
	if len(results) == 0 || len(thresholds) == 0 {
		return nil
	}

	var violations []Violation

	limit := len(results)
	if limit > len(thresholds) {
		limit = len(thresholds)
	}

	for i := 0; i < limit; i++ {
		r := results[i]
		t := thresholds[i]

		if nsPerOp := r.NsPerOp(); t.MaxNs > 0 && nsPerOp > t.MaxNs {
			violations = append(violations, Violation{
				Threshold: t,
				Actual:    nsPerOp,
				Field:     "ns",
			})
		}

		if allocPerOp := r.AllocedBytesPerOp(); t.MaxAlloc > 0 && allocPerOp > t.MaxAlloc {
			violations = append(violations, Violation{
				Threshold: t,
				Actual:    allocPerOp,
				Field:     "alloc",
			})
		}
	}

	return violations
}
