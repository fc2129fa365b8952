package welford

import "math"

// ConstantMemoryMoments approximates outlier-aware statistics without
// storing samples. When a sample falls farther than threshold standard
// deviations from the mean, the mean is nudged further toward it by a fudge
// factor of the deviation. Samples are never rejected.
//
// The result is an approximation and does not match PrunableMoments. Only the
// mean is nudged: M2 keeps accumulating along the unnudged path, so the
// reported variance drifts after repeated adjustments.
type ConstantMemoryMoments struct {
	state     MomentsState
	threshold float64
	fudge     float64
}

// NewConstantMemoryMoments returns an empty ConstantMemoryMoments. It
// accepts the Threshold and FudgeFactor options.
func NewConstantMemoryMoments(options ...MomentsOption) (*ConstantMemoryMoments, error) {
	c, err := newMomentsConfig(options)
	if err != nil {
		return nil, err
	}

	return &ConstantMemoryMoments{
		threshold: c.threshold,
		fudge:     c.fudge,
	}, nil
}

// Update incorporates x in O(1) time and memory.
func (m *ConstantMemoryMoments) Update(x float64) {
	delta := m.state.update(x)

	// StdDev is NaN below 2 samples, so the comparison is false.
	if math.Abs(delta) > m.threshold*m.state.StdDev() {
		m.state.Mean += m.fudge * delta
		// never overshoot the sample itself
		if (delta > 0 && m.state.Mean > x) || (delta < 0 && m.state.Mean < x) {
			m.state.Mean = x
		}
	}
}

// Count returns the number of samples seen.
func (m *ConstantMemoryMoments) Count() uint64 {
	return m.state.Count
}

// Mean returns the adjusted running mean.
func (m *ConstantMemoryMoments) Mean() float64 {
	return m.state.Mean
}

// Variance returns the sample variance, or NaN with fewer than 2 samples.
func (m *ConstantMemoryMoments) Variance() float64 {
	return m.state.Variance()
}

// StdDev returns the sample standard deviation, or NaN with fewer than 2
// samples.
func (m *ConstantMemoryMoments) StdDev() float64 {
	return m.state.StdDev()
}

// State returns a copy of the running statistics.
func (m *ConstantMemoryMoments) State() MomentsState {
	return m.state
}

// Reset discards every sample.
func (m *ConstantMemoryMoments) Reset() {
	m.state = MomentsState{}
}
