package aggregate

import (
	"sort"

	"ejmap/internal/features"
)

// Summary describes the features rendered in one viewport.
type Summary struct {
	TotalPopulation      float64   `json:"total_population"`
	DistinctFeatureCount int       `json:"distinct_feature_count"`
	SortedSample         []float64 `json:"sorted_sample"`
}

// Aggregate sums population and collects indicator values over the
// currently rendered features. Both inputs are deduplicated by identity.
// Empty input yields a zero summary with an empty, non-nil sample.
func Aggregate(popFeatures, indFeatures []features.Rendered, popField, indField string) Summary {
	pop := features.Index(popFeatures, popField)
	ind := features.Index(indFeatures, indField)

	sample := ind.Values()
	sort.Float64s(sample)

	return Summary{
		TotalPopulation:      pop.Sum(),
		DistinctFeatureCount: pop.Len(),
		SortedSample:         sample,
	}
}

// Median returns the middle of the sorted sample, or false when empty.
func (s Summary) Median() (float64, bool) {
	n := len(s.SortedSample)
	if n == 0 {
		return 0, false
	}
	if n%2 == 1 {
		return s.SortedSample[n/2], true
	}
	return (s.SortedSample[n/2-1] + s.SortedSample[n/2]) / 2, true
}

// Top returns the n largest sample values, ascending.
func (s Summary) Top(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n > len(s.SortedSample) {
		n = len(s.SortedSample)
	}
	return append([]float64(nil), s.SortedSample[len(s.SortedSample)-n:]...)
}
