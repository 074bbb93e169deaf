package pricing

import "math"

// ApportionPercentages turns bucket counts into integer percentages that sum
// to exactly 100. Each share is rounded independently and the leftover
// rounding error is then moved onto the largest share. A zero total yields
// all zeros.
func ApportionPercentages(counts []int) []int {
	percentages := make([]int, len(counts))

	total := 0
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return percentages
	}

	for i, c := range counts {
		percentages[i] = int(math.Round(100 * float64(c) / float64(total)))
	}
	return CorrectRoundingError(percentages)
}

// CorrectRoundingError adds 100 - sum(percentages) to the largest entry
// (first one on ties) and returns the slice. An empty slice is returned
// unchanged.
func CorrectRoundingError(percentages []int) []int {
	if len(percentages) == 0 {
		return percentages
	}

	sum := 0
	largest := 0
	for i, p := range percentages {
		sum += p
		if p > percentages[largest] {
			largest = i
		}
	}

	percentages[largest] += 100 - sum
	return percentages
}
