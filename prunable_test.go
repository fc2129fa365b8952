package welford

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrunableMomentsOptions(t *testing.T) {
	_, err := NewPrunableMoments(Threshold(0))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewPrunableMoments(Capacity(-1))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	m, err := NewPrunableMoments(Threshold(3), Capacity(10))
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.threshold)
}

func TestPrunableMomentsRemovesSpike(t *testing.T) {
	m, err := NewPrunableMoments(Threshold(1.5))
	require.NoError(t, err)
	for _, x := range []float64{1, 1, 1, 1, 100} {
		m.Update(x)
	}
	assert.InDelta(t, 20.8, m.Mean(), 1e-9)

	assert.Equal(t, 1, m.PruneOutliers())
	assert.Equal(t, []float64{1, 1, 1, 1}, m.Samples())
	assert.Equal(t, uint64(4), m.Count())
	assert.Equal(t, 1.0, m.Mean())
	assert.Equal(t, 0.0, m.Variance())
}

func TestPrunableMomentsDefaultThresholdOnFiveSamples(t *testing.T) {
	// With 5 samples no value can be more than 4/sqrt(5) sample standard
	// deviations away from the mean, so a threshold of 2 keeps everything.
	m, err := NewPrunableMoments()
	require.NoError(t, err)
	for _, x := range []float64{1, 1, 1, 1, 100} {
		m.Update(x)
	}

	assert.Equal(t, 0, m.PruneOutliers())
	assert.Equal(t, []float64{1, 1, 1, 1, 100}, m.Samples())
}

func TestPrunableMomentsMatchesRunningMoments(t *testing.T) {
	m, err := NewPrunableMoments()
	require.NoError(t, err)
	samples := []float64{10, 12, 11, 13, 12, 11, 10, 12, 11, 13, 12, 95, 11, 10, 12, -60, 11}
	for _, x := range samples {
		m.Update(x)
	}

	dropped := m.PruneOutliers()
	retained := m.Samples()
	assert.Equal(t, len(samples)-dropped, len(retained))
	assert.NotContains(t, retained, 95.0)
	assert.NotContains(t, retained, -60.0)

	var fresh RunningMoments
	for _, x := range retained {
		fresh.Update(x)
	}
	assert.Equal(t, fresh.State(), m.State())
}

func TestPrunableMomentsPruneNeedsTwoSamples(t *testing.T) {
	m, err := NewPrunableMoments()
	require.NoError(t, err)

	assert.Equal(t, 0, m.PruneOutliers())
	m.Update(7)
	assert.Equal(t, 0, m.PruneOutliers())
	assert.Equal(t, []float64{7}, m.Samples())
}

func TestPrunableMomentsCapacity(t *testing.T) {
	m, err := NewPrunableMoments(Capacity(3))
	require.NoError(t, err)
	for _, x := range []float64{1, 2, 3, 4, 5} {
		m.Update(x)
	}

	assert.Equal(t, []float64{3, 4, 5}, m.Samples())
	assert.Equal(t, uint64(3), m.Count())
	assert.InDelta(t, 4.0, m.Mean(), 1e-9)
	assert.InDelta(t, 1.0, m.Variance(), 1e-9)

	m.Update(40)
	m.Update(4)
	m.Update(5)
	m.Update(4)
	assert.Equal(t, []float64{4, 5, 4}, m.Samples())

	var fresh RunningMoments
	for _, x := range m.Samples() {
		fresh.Update(x)
	}
	assert.InDelta(t, fresh.Mean(), m.Mean(), 1e-9)
	assert.InDelta(t, fresh.Variance(), m.Variance(), 1e-9)
}

func TestPrunableMomentsCapacityAfterSpike(t *testing.T) {
	m, err := NewPrunableMoments(Capacity(10))
	require.NoError(t, err)

	for i := 0; i < 5020; i++ {
		x := 1e6 + 1e-3*float64(i%3-1)
		if i%1000 == 999 {
			x = 1e9
		}
		m.Update(x)
	}

	retained := m.Samples()
	require.Len(t, retained, 10)
	assert.NotContains(t, retained, 1e9)

	var fresh RunningMoments
	for _, x := range retained {
		fresh.Update(x)
	}
	assert.Equal(t, fresh.State(), m.State())
	assert.Less(t, m.Variance(), 1e-5)
}

func TestPrunableMomentsSamplesIsACopy(t *testing.T) {
	m, err := NewPrunableMoments()
	require.NoError(t, err)
	m.Update(1)
	m.Update(2)

	s := m.Samples()
	s[0] = 100
	assert.Equal(t, []float64{1, 2}, m.Samples())
}

func TestPrunableMomentsReset(t *testing.T) {
	m, err := NewPrunableMoments(Capacity(2))
	require.NoError(t, err)
	m.Update(1)
	m.Update(2)
	m.Update(3)
	m.Reset()

	assert.Empty(t, m.Samples())
	assert.Equal(t, MomentsState{}, m.State())

	m.Update(9)
	assert.Equal(t, []float64{9}, m.Samples())
}
