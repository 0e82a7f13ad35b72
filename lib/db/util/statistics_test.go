package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStats(t *testing.T) {
	assert.Equal(t, Stats{}, NewStats(nil))

	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 5.0, s.Mean)
	assert.InDelta(t, 2.0, s.StdDeviation, 1e-9)
	assert.InDelta(t, 2.0/9.0, s.MinMaxRatio, 1e-9)
}

func TestDistributionQuality(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	assert.InDelta(t, 1.0, even.DistributionQuality, 1e-9)

	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	assert.Less(t, skewed.DistributionQuality, 0.5)
}

func TestHistogram(t *testing.T) {
	h := NewSizeHistogram()
	assert.Equal(t, 0, h.Median())

	for i := 0; i < 90; i++ {
		h.AddSample(10) // bucket <= 16
	}
	for i := 0; i < 10; i++ {
		h.AddSample(1000) // bucket <= 1024
	}

	assert.Equal(t, int64(100), h.Count())
	assert.Equal(t, (90*10+10*1000)/100, h.Average())
	assert.Equal(t, 8, h.Median())
	assert.Equal(t, (256+1024)/2, h.Percentile(95))
	assert.Equal(t, 0, h.Percentile(101))

	bounds, pct := h.Distribution()
	assert.Len(t, pct, len(bounds)+1)
	assert.InDelta(t, 90.0, pct[0], 1e-9)
	assert.InDelta(t, 10.0, pct[3], 1e-9)
}

func TestHistogramUnboundedBucket(t *testing.T) {
	h := NewCardinalityHistogram()
	h.AddSample(10_000_000)
	assert.Equal(t, 2097152*2, h.Median())
}

func TestHashStringDeterministic(t *testing.T) {
	assert.Equal(t, HashString("key", 42), HashString("key", 42))
	assert.NotEqual(t, HashString("key", 42), HashString("key", 43))
	assert.NotEqual(t, HashString("key-a", 42), HashString("key-b", 42))
}
