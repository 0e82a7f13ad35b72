package util

import (
	"math"
	"sort"
	"sync"
)

// ----------------------------------------------------------------------------
// Summary statistics
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes mean, standard deviation (population), minimum and
// maximum of the given values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	mean := sum / float64(len(values))

	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	minMaxRatio := 1.0
	if max > 0 {
		minMaxRatio = min / max
	}

	return Stats{
		StdDeviation: math.Sqrt(sumSquaredDiffs / float64(len(values))),
		Min:          min,
		Max:          max,
		Mean:         mean,
		MinMaxRatio:  minMaxRatio,
	}
}

type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats rates how evenly values (e.g. shard sizes) are spread.
// DistributionQuality is 1 for a perfectly even spread and approaches 0 for a
// heavily skewed one.
func NewDistributionStats(sizes []float64) DistributionStats {
	stats := NewStats(sizes)

	// coefficient of variation
	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5,
	}
}

// ----------------------------------------------------------------------------
// Histogram
// ----------------------------------------------------------------------------

// Histogram counts samples in exponentially growing buckets. It is used to
// estimate value sizes and sorted set cardinalities from a sample of entries
// without a full scan.
//
// Thread-safety: All methods are safe for concurrent use.
type Histogram struct {
	mutex      sync.RWMutex
	boundaries []int   // Upper (inclusive) bound of each bucket
	buckets    []int64 // len(boundaries)+1, the last bucket is unbounded
	count      int64
	sum        int64
}

// NewSizeHistogram creates a histogram for byte sizes from 16B to 64MB
func NewSizeHistogram() *Histogram {
	return newHistogram([]int{
		16, 64, 256, 1024, 4096, // 16B to 4KB
		16384, 65536, 262144, 1048576, // 16KB to 1MB
		4194304, 16777216, 67108864, // 4MB to 64MB
	})
}

// NewCardinalityHistogram creates a histogram for sorted set member counts
func NewCardinalityHistogram() *Histogram {
	return newHistogram([]int{0, 1, 8, 64, 512, 4096, 32768, 262144, 2097152})
}

func newHistogram(boundaries []int) *Histogram {
	return &Histogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)+1),
	}
}

// AddSample adds a single sample to the histogram
func (h *Histogram) AddSample(v int) {
	// first bucket whose bound is >= v, len(boundaries) if none
	i := sort.SearchInts(h.boundaries, v)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.buckets[i]++
	h.count++
	h.sum += int64(v)
}

// Count returns the total number of samples
func (h *Histogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Average returns the exact mean of all samples
func (h *Histogram) Average() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// Percentile estimates the given percentile (0-100) from the bucket counts.
// The estimate is the midpoint of the bucket containing the percentile.
func (h *Histogram) Percentile(percentile int) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	var cumulative int64
	for i, c := range h.buckets {
		cumulative += c
		if cumulative >= target && c > 0 {
			return h.bucketMidpoint(i)
		}
	}
	return int(h.sum / h.count)
}

// Median is shorthand for Percentile(50)
func (h *Histogram) Median() int {
	return h.Percentile(50)
}

func (h *Histogram) bucketMidpoint(i int) int {
	switch {
	case i == 0:
		return h.boundaries[0] / 2
	case i < len(h.boundaries):
		return (h.boundaries[i-1] + h.boundaries[i]) / 2
	default:
		// the last bucket is unbounded, assume twice the last bound
		return h.boundaries[len(h.boundaries)-1] * 2
	}
}

// Distribution returns the bucket boundaries and the share (in percent) of
// samples per bucket. The percentages slice has one more element than the
// boundaries slice.
func (h *Histogram) Distribution() ([]int, []float64) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	percentages := make([]float64, len(h.buckets))
	if h.count == 0 {
		return h.boundaries, percentages
	}
	for i, c := range h.buckets {
		percentages[i] = float64(c) * 100.0 / float64(h.count)
	}
	return h.boundaries, percentages
}
