package welford

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantMemoryMomentsOptions(t *testing.T) {
	for _, f := range []float64{-0.1, 1.5} {
		_, err := NewConstantMemoryMoments(FudgeFactor(f))
		assert.True(t, errors.Is(err, ErrInvalidConfig), "fudge %v", f)
	}

	m, err := NewConstantMemoryMoments(FudgeFactor(1), Threshold(1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.fudge)
	assert.Equal(t, 1.0, m.threshold)
}

func TestConstantMemoryMomentsNudgesMean(t *testing.T) {
	m, err := NewConstantMemoryMoments()
	require.NoError(t, err)
	var plain RunningMoments

	for _, x := range []float64{10, 10, 10, 10, 100} {
		m.Update(x)
		plain.Update(x)
	}

	assert.InDelta(t, 28.0, plain.Mean(), 1e-9)
	// 90 away from a mean of 10, while 2 stddev is about 80.5: nudged by 0.3*90.
	assert.InDelta(t, 55.0, m.Mean(), 1e-9)
	// Only the mean moves.
	assert.Equal(t, plain.Variance(), m.Variance())
}

func TestConstantMemoryMomentsNoNudgeWithoutOutliers(t *testing.T) {
	m, err := NewConstantMemoryMoments()
	require.NoError(t, err)
	var plain RunningMoments

	for _, x := range []float64{2, 2, 3} {
		m.Update(x)
		plain.Update(x)
	}
	assert.Equal(t, plain.State(), m.State())
}

func TestConstantMemoryMomentsMeanWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, opts := range [][]MomentsOption{
		nil,
		{FudgeFactor(1), Threshold(0.1)},
		{FudgeFactor(0.8), Threshold(1)},
	} {
		m, err := NewConstantMemoryMoments(opts...)
		require.NoError(t, err)

		lo, hi := 0.0, 0.0
		for i := 0; i < 2000; i++ {
			x := rng.NormFloat64()
			if rng.Intn(20) == 0 {
				x *= 100
			}
			if i == 0 || x < lo {
				lo = x
			}
			if i == 0 || x > hi {
				hi = x
			}

			m.Update(x)
			require.GreaterOrEqual(t, m.Mean(), lo)
			require.LessOrEqual(t, m.Mean(), hi)
			if i > 0 {
				require.GreaterOrEqual(t, m.State().M2, 0.0)
			}
		}
	}
}
