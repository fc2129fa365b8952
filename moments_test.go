package welford

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPass(samples []float64) (mean, variance float64) {
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	mean = sum / float64(len(samples))

	sq := 0.0
	for _, s := range samples {
		sq += (s - mean) * (s - mean)
	}
	return mean, sq / float64(len(samples)-1)
}

func TestRunningMomentsEmpty(t *testing.T) {
	var m RunningMoments

	assert.Equal(t, uint64(0), m.Count())
	assert.Equal(t, 0.0, m.Mean())
	assert.True(t, IsUndefined(m.Variance()))
	assert.True(t, IsUndefined(m.StdDev()))

	m.Update(42)
	assert.Equal(t, 42.0, m.Mean())
	assert.True(t, IsUndefined(m.Variance()), "one sample has no variance")
}

func TestRunningMomentsSmallSequence(t *testing.T) {
	m := NewRunningMoments()
	for _, x := range []float64{2, 2, 3} {
		m.Update(x)
	}

	assert.Equal(t, uint64(3), m.Count())
	assert.InDelta(t, 7.0/3, m.Mean(), 1e-12)
	assert.InDelta(t, 1.0/3, m.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(1.0/3), m.StdDev(), 1e-12)
}

func TestRunningMomentsMatchesTwoPass(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{2, 3, 10, 100, 5000} {
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = rng.NormFloat64()*25 + 1000
		}

		var m RunningMoments
		for _, s := range samples {
			m.Update(s)
		}

		mean, variance := twoPass(samples)
		assert.InDelta(t, mean, m.Mean(), 1e-9, "n=%d", n)
		assert.InEpsilon(t, variance, m.Variance(), 1e-9, "n=%d", n)
	}
}

func TestRunningMomentsIdempotent(t *testing.T) {
	samples := []float64{2, 2, 3, 3, 8, 20, 12, 12, 13, 12, 11, 12}

	var a, b RunningMoments
	for _, s := range samples {
		a.Update(s)
	}
	for _, s := range samples {
		b.Update(s)
	}

	assert.Equal(t, a.State(), b.State())
}

func TestRunningMomentsReset(t *testing.T) {
	var m RunningMoments
	m.Update(1)
	m.Update(5)
	m.Reset()

	assert.Equal(t, MomentsState{}, m.State())
}

func TestMomentsStrategiesAreInterchangeable(t *testing.T) {
	prunable, err := NewPrunableMoments()
	require.NoError(t, err)
	constant, err := NewConstantMemoryMoments()
	require.NoError(t, err)

	for _, m := range []Moments{NewRunningMoments(), prunable, constant} {
		for _, x := range []float64{2, 2, 3} {
			m.Update(x)
		}
		assert.Equal(t, uint64(3), m.Count())
		assert.InDelta(t, 7.0/3, m.Mean(), 1e-12)
		assert.InDelta(t, 1.0/3, m.Variance(), 1e-12)

		m.Reset()
		assert.Equal(t, uint64(0), m.Count())
		assert.True(t, IsUndefined(m.StdDev()))
	}
}
