package pricing

import (
	"fmt"
	"strings"
)

// BucketCount is the number of ordered price bands in a distribution
const BucketCount = 5

// DistributionMethod identifies how the bucket boundaries were built
type DistributionMethod int

const (
	// MethodNone is only used by the empty-input fallback
	MethodNone DistributionMethod = iota
	// MethodQuartile uses [min,Q1,Q2,Q3,P90,max] for large samples
	MethodQuartile
	// MethodDeviation uses mean ± k·stdDev bands for medium samples
	MethodDeviation
	// MethodLinear splits the range into equal-width bands for small distinct samples
	MethodLinear
	// MethodFixed anchors canonical bands on the repeated price of a small sample
	MethodFixed
)

// String returns the string representation of the method
func (m DistributionMethod) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodQuartile:
		return "quartile"
	case MethodDeviation:
		return "deviation"
	case MethodLinear:
		return "linear"
	case MethodFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m DistributionMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *DistributionMethod) UnmarshalText(text []byte) error {
	for c := MethodNone; c <= MethodFixed; c++ {
		if strings.EqualFold(c.String(), string(text)) {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("unknown distribution method %q", string(text))
}

// Band names one of the five ordered price buckets
type Band int

const (
	BandVeryLow Band = iota
	BandLow
	BandAverage
	BandHigh
	BandVeryHigh
)

// String returns the string representation of the band
func (b Band) String() string {
	switch b {
	case BandVeryLow:
		return "very_low"
	case BandLow:
		return "low"
	case BandAverage:
		return "average"
	case BandHigh:
		return "high"
	case BandVeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *Band) UnmarshalText(text []byte) error {
	for c := BandVeryLow; c <= BandVeryHigh; c++ {
		if strings.EqualFold(c.String(), string(text)) {
			*b = c
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", string(text))
}

// PriceBucket is one band of the price distribution. Prices in
// [Lower, Upper) are counted, the last bucket also includes Upper.
type PriceBucket struct {
	Band       Band               `json:"band"`
	Lower      float64            `json:"lower"`
	Upper      float64            `json:"upper"`
	Count      int                `json:"count"`
	Percentage int                `json:"percentage"`
	Method     DistributionMethod `json:"method"`
}

// PriceDistribution is the ordered five-bucket distribution of comparable prices
type PriceDistribution struct {
	Method  DistributionMethod `json:"method"`
	Buckets []PriceBucket      `json:"buckets"`
}

// TotalPercentage returns the sum of the bucket percentages
func (d PriceDistribution) TotalPercentage() int {
	total := 0
	for _, b := range d.Buckets {
		total += b.Percentage
	}
	return total
}

// TotalCount returns the number of prices counted across all buckets
func (d PriceDistribution) TotalCount() int {
	total := 0
	for _, b := range d.Buckets {
		total += b.Count
	}
	return total
}

// SelectMethod picks the binning method for an ascending-sorted price sequence
func SelectMethod(sorted []float64, params Params) DistributionMethod {
	n := len(sorted)
	switch {
	case n == 0:
		return MethodNone
	case n >= params.QuartileThreshold:
		return MethodQuartile
	case n >= params.DeviationThreshold:
		return MethodDeviation
	case hasDuplicates(sorted):
		return MethodFixed
	default:
		return MethodLinear
	}
}

// BuildDistribution bins an ascending-sorted sequence of valid prices into
// five ordered buckets using the method chosen by SelectMethod.
func BuildDistribution(sorted []float64, params Params) PriceDistribution {
	method := SelectMethod(sorted, params)
	if method == MethodNone {
		return emptyDistribution()
	}

	var edges [BucketCount + 1]float64
	switch method {
	case MethodQuartile:
		edges = quartileEdges(sorted, params)
	case MethodDeviation:
		edges = deviationEdges(sorted, params)
	case MethodFixed:
		edges = fixedEdges(sorted, params)
	default:
		edges = linearEdges(sorted)
	}

	counts := countIntoBuckets(sorted, edges)
	percentages := ApportionPercentages(counts[:])

	dist := PriceDistribution{
		Method:  method,
		Buckets: make([]PriceBucket, BucketCount),
	}
	for i := 0; i < BucketCount; i++ {
		dist.Buckets[i] = PriceBucket{
			Band:       Band(i),
			Lower:      edges[i],
			Upper:      edges[i+1],
			Count:      counts[i],
			Percentage: percentages[i],
			Method:     method,
		}
	}
	return dist
}

// emptyDistribution is the documented fallback for an empty comparable set
func emptyDistribution() PriceDistribution {
	dist := PriceDistribution{
		Method:  MethodNone,
		Buckets: make([]PriceBucket, BucketCount),
	}
	for i := range dist.Buckets {
		dist.Buckets[i] = PriceBucket{Band: Band(i), Method: MethodNone}
	}
	return dist
}

func quartileEdges(sorted []float64, params Params) [BucketCount + 1]float64 {
	return [BucketCount + 1]float64{
		sorted[0],
		mustPercentile(sorted, 0.25),
		mustPercentile(sorted, 0.50),
		mustPercentile(sorted, 0.75),
		mustPercentile(sorted, params.TailPercentile),
		sorted[len(sorted)-1],
	}
}

// deviationEdges places the inner cuts at mean + k·stdDev, clamped into the
// observed range and forced non-decreasing so the bands never overlap.
func deviationEdges(sorted []float64, params Params) [BucketCount + 1]float64 {
	minPrice, maxPrice := sorted[0], sorted[len(sorted)-1]
	mean := Mean(sorted)
	sd := StdDev(sorted, mean)

	var edges [BucketCount + 1]float64
	edges[0] = minPrice
	for i, k := range params.DeviationCuts {
		cut := clamp(mean+k*sd, minPrice, maxPrice)
		if cut < edges[i] {
			cut = edges[i]
		}
		edges[i+1] = cut
	}
	edges[BucketCount] = maxPrice
	return edges
}

func linearEdges(sorted []float64) [BucketCount + 1]float64 {
	minPrice, maxPrice := sorted[0], sorted[len(sorted)-1]
	width := (maxPrice - minPrice) / BucketCount

	var edges [BucketCount + 1]float64
	for i := 0; i < BucketCount; i++ {
		edges[i] = minPrice + float64(i)*width
	}
	edges[BucketCount] = maxPrice
	return edges
}

// fixedEdges anchors canonical ratio bands on the repeated price. The outer
// edges widen to the observed range when a price falls outside the bands.
func fixedEdges(sorted []float64, params Params) [BucketCount + 1]float64 {
	anchor, ok, _ := Mode(sorted)
	if !ok {
		anchor = mustPercentile(sorted, 0.5)
	}

	var edges [BucketCount + 1]float64
	edges[0] = min(sorted[0], anchor*params.FixedFloor)
	for i, ratio := range params.FixedCuts {
		edges[i+1] = saturate(anchor * ratio)
	}
	edges[BucketCount] = max(sorted[len(sorted)-1], saturate(anchor*params.FixedCeiling))
	return edges
}

// countIntoBuckets assigns each price to the first bucket whose upper edge
// exceeds it; the last bucket takes the rest. When every price is identical
// the edges collapse and the whole sample goes to the average band.
func countIntoBuckets(sorted []float64, edges [BucketCount + 1]float64) [BucketCount]int {
	var counts [BucketCount]int
	if len(sorted) == 0 {
		return counts
	}
	if sorted[0] == sorted[len(sorted)-1] {
		counts[BandAverage] = len(sorted)
		return counts
	}

	for _, price := range sorted {
		for i := 0; i < BucketCount; i++ {
			if i == BucketCount-1 || price < edges[i+1] {
				counts[i]++
				break
			}
		}
	}
	return counts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
