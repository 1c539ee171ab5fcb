// Package histogram buckets a viewport sample into equal-width bins over
// an indicator's declared domain.
package histogram

import (
	"math"

	"github.com/rotisserie/eris"

	"ejmap/internal/layers"
)

// ErrInvalidDomain is returned for an empty or inverted domain, or a
// non-positive bucket count.
var ErrInvalidDomain = eris.New("histogram: invalid domain")

// Bin is one bucket of a histogram.
type Bin struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Count int     `json:"count"`
}

// Compute buckets sample into bucketCount equal-width bins spanning domain.
//
// The first bin is closed on both ends and every later bin is closed on its
// upper edge only, so domain.Min and domain.Max always land in a bin. Values
// outside the domain and NaN are dropped.
func Compute(sample []float64, domain layers.Domain, bucketCount int) ([]Bin, error) {
	if bucketCount <= 0 {
		return nil, eris.Wrapf(ErrInvalidDomain, "bucket count %d", bucketCount)
	}
	if !domain.Valid() || math.IsInf(domain.Min, 0) || math.IsInf(domain.Max, 0) {
		return nil, eris.Wrapf(ErrInvalidDomain, "domain [%g, %g]", domain.Min, domain.Max)
	}

	bins := make([]Bin, bucketCount)
	width := (domain.Max - domain.Min) / float64(bucketCount)
	for i := range bins {
		bins[i].X0 = domain.Min + float64(i)*width
		bins[i].X1 = domain.Min + float64(i+1)*width
	}
	// pin the last edge so float error cannot leave a gap before Max
	bins[bucketCount-1].X1 = domain.Max
	for i := 1; i < bucketCount; i++ {
		bins[i].X0 = bins[i-1].X1
	}

	for _, v := range sample {
		if math.IsNaN(v) || v < domain.Min || v > domain.Max {
			continue
		}
		bins[indexOf(bins, v)].Count++
	}
	return bins, nil
}

// indexOf finds the bin holding v, which must lie inside the domain.
func indexOf(bins []Bin, v float64) int {
	lo, hi := 0, len(bins)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if v <= bins[mid].X1 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// DefaultBuckets picks the bucket count used by the indicator charts: one
// bucket per unit for small domains (max below 100), otherwise 30.
func DefaultBuckets(domain layers.Domain) int {
	if domain.Max < 100 {
		n := int(math.Ceil(domain.Max - domain.Min))
		if n < 1 {
			return 1
		}
		return n
	}
	return 30
}

// MaxCount returns the largest bin count.
func MaxCount(bins []Bin) int {
	m := 0
	for _, b := range bins {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

// Total returns the number of binned values.
func Total(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}
