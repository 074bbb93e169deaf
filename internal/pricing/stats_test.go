package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPercentile tests linear-interpolation percentiles
func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"minimum", 0, 1},
		{"first quartile", 0.25, 1.75},
		{"median", 0.5, 2.5},
		{"third quartile", 0.75, 3.25},
		{"maximum", 1, 4},
		{"below range", -0.5, 1},
		{"above range", 1.5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentile(sorted, tt.p)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}

	t.Run("single value", func(t *testing.T) {
		got, err := Percentile([]float64{42}, 0.9)
		require.NoError(t, err)
		assert.Equal(t, 42.0, got)
	})

	t.Run("non-finite rank", func(t *testing.T) {
		for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			var err error
			require.NotPanics(t, func() { _, err = Percentile(sorted, p) })
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPercentile))
			assert.False(t, errors.Is(err, ErrInsufficientData))
		}
	})

	t.Run("empty sequence", func(t *testing.T) {
		_, err := Percentile(nil, 0.5)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientData))

		var insufficient *InsufficientDataError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, "percentile", insufficient.Op)
		assert.Equal(t, 0, insufficient.Got)
	})
}

// TestMeanAndStdDev tests mean and population standard deviation
func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	mean := Mean(values)
	assert.Equal(t, 5.0, mean)
	assert.InDelta(t, 2.0, StdDev(values, mean), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil, 0))
	assert.Equal(t, 0.0, StdDev([]float64{7, 7, 7}, 7))

	t.Run("huge finite values", func(t *testing.T) {
		same := []float64{1e308, 1e308}
		m := Mean(same)
		assert.Equal(t, 1e308, m)
		assert.Equal(t, 0.0, StdDev(same, m))

		spread := []float64{1e300, 2e300, 3e300}
		m = Mean(spread)
		assert.InEpsilon(t, 2e300, m, 1e-12)
		sd := StdDev(spread, m)
		assert.False(t, math.IsInf(sd, 0))
		assert.InEpsilon(t, math.Sqrt(2.0/3.0)*1e300, sd, 1e-9)

		extreme := []float64{math.MaxFloat64, math.MaxFloat64 / 2}
		m = Mean(extreme)
		assert.InEpsilon(t, 0.75*math.MaxFloat64, m, 1e-12)
		assert.InEpsilon(t, 0.25*math.MaxFloat64, StdDev(extreme, m), 1e-9)
	})
}

// TestCoefficientOfVariation tests the zero-mean guard
func TestCoefficientOfVariation(t *testing.T) {
	assert.InDelta(t, 0.4, CoefficientOfVariation(2, 5), 1e-12)
	assert.Equal(t, 0.0, CoefficientOfVariation(3, 0))
	assert.False(t, math.IsNaN(CoefficientOfVariation(0, 0)))
}

// TestMode tests mode detection and tie breaking
func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		mode   float64
		ok     bool
	}{
		{"single repeated value", []float64{5, 3, 5, 1}, 5, true},
		{"tie goes to smallest", []float64{3, 1, 3, 2, 2}, 2, true},
		{"all unique", []float64{4, 1, 3}, 0, false},
		{"single value", []float64{9}, 0, false},
		{"all equal", []float64{100000, 100000, 100000}, 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, ok, err := Mode(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mode, mode)
		})
	}

	t.Run("does not reorder input", func(t *testing.T) {
		values := []float64{3, 1, 3}
		_, _, err := Mode(values)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 1, 3}, values)
	})

	t.Run("empty sequence", func(t *testing.T) {
		_, ok, err := Mode(nil)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

// TestComputeQuartiles tests Q0..Q4 and their ordering
func TestComputeQuartiles(t *testing.T) {
	q, err := ComputeQuartiles([]float64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	assert.Equal(t, Quartiles{Q0: 10, Q1: 20, Q2: 30, Q3: 40, Q4: 50}, q)
	assert.True(t, q.IsOrdered())

	_, err = ComputeQuartiles(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	assert.False(t, Quartiles{Q0: 1, Q1: 3, Q2: 2, Q3: 4, Q4: 5}.IsOrdered())
}

// TestDispersion tests the relative price range
func TestDispersion(t *testing.T) {
	assert.InDelta(t, 0.5, Dispersion(300, 500, 400), 1e-12)
	assert.Equal(t, 0.0, Dispersion(0, 0, 0))
}
