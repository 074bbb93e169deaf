package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInsufficientData is matched by every InsufficientDataError via errors.Is
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError is returned by the low-level primitives when they are
// called on an empty sequence.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d values, got %d", e.Op, e.Need, e.Got)
}

// Is lets errors.Is(err, ErrInsufficientData) match
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ErrInvalidPercentile is returned by Percentile for a NaN or infinite p
var ErrInvalidPercentile = errors.New("percentile rank must be finite")

// Percentile returns the p-th percentile (p in [0,1]) of an ascending-sorted
// sequence using linear interpolation between closest ranks. Ranks outside
// [0,1] clamp to the extremes; a NaN or infinite rank is rejected.
func Percentile(sorted []float64, p float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return 0, &InsufficientDataError{Op: "percentile", Need: 1, Got: 0}
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("percentile %v: %w", p, ErrInvalidPercentile)
	}

	if p <= 0 {
		return sorted[0], nil
	}
	if p >= 1 {
		return sorted[n-1], nil
	}

	rank := p * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower], nil
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight, nil
}

// mustPercentile is used where the caller has already checked for emptiness
func mustPercentile(sorted []float64, p float64) float64 {
	v, err := Percentile(sorted, p)
	if err != nil {
		panic(err)
	}
	return v
}

// Mean returns the arithmetic mean, or 0 for an empty sequence. Finite input
// always gives a finite mean, even when the plain sum would overflow.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(len(values))
	}

	// The running sum overflowed: fold the mean in incrementally instead.
	var mean float64
	for i, v := range values {
		k := float64(i + 1)
		mean += v/k - mean/k
	}
	return mean
}

// StdDev returns the population standard deviation around mean
func StdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var squaredDiffSum float64
	for _, v := range values {
		diff := v - mean
		squaredDiffSum += diff * diff
	}
	if !math.IsInf(squaredDiffSum, 0) {
		return math.Sqrt(squaredDiffSum / float64(len(values)))
	}
	return scaledStdDev(values, mean)
}

// scaledStdDev works on half-deviations divided by the largest one, so no
// intermediate square can overflow.
func scaledStdDev(values []float64, mean float64) float64 {
	var scale float64
	for _, v := range values {
		scale = max(scale, math.Abs(v/2-mean/2))
	}
	if scale == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		d := (v/2 - mean/2) / scale
		sum += d * d
	}
	return 2 * scale * math.Sqrt(sum/float64(len(values)))
}

// CoefficientOfVariation returns stdDev/mean, or 0 when mean is 0
func CoefficientOfVariation(stdDev, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return stdDev / mean
}

// Mode returns the most frequent value. Ties go to the smallest value.
// ok is false when every value occurs exactly once.
func Mode(values []float64) (mode float64, ok bool, err error) {
	if len(values) == 0 {
		return 0, false, &InsufficientDataError{Op: "mode", Need: 1, Got: 0}
	}

	sorted := sortedCopy(values)

	bestCount := 0
	runStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[runStart] {
			continue
		}
		if count := i - runStart; count > bestCount {
			bestCount = count
			mode = sorted[runStart]
		}
		runStart = i
	}

	if bestCount <= 1 {
		return 0, false, nil
	}
	return mode, true, nil
}

// ComputeQuartiles returns Q0..Q4 of an ascending-sorted sequence
func ComputeQuartiles(sorted []float64) (Quartiles, error) {
	if len(sorted) == 0 {
		return Quartiles{}, &InsufficientDataError{Op: "quartiles", Need: 1, Got: 0}
	}
	return Quartiles{
		Q0: sorted[0],
		Q1: mustPercentile(sorted, 0.25),
		Q2: mustPercentile(sorted, 0.50),
		Q3: mustPercentile(sorted, 0.75),
		Q4: sorted[len(sorted)-1],
	}, nil
}

// Dispersion returns (max-min)/mean, or 0 when mean is 0
func Dispersion(minValue, maxValue, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return (maxValue - minValue) / mean
}

// hasDuplicates reports whether an ascending-sorted sequence repeats a value
func hasDuplicates(sorted []float64) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
