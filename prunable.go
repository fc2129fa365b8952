package welford

import "math"

// PrunableMoments computes running statistics like RunningMoments but keeps
// its samples, so that outliers can later be discarded and the statistics
// recomputed from the remaining ones.
type PrunableMoments struct {
	state     MomentsState
	samples   *window
	threshold float64
}

// NewPrunableMoments returns an empty PrunableMoments. It accepts the
// Threshold and Capacity options.
func NewPrunableMoments(options ...MomentsOption) (*PrunableMoments, error) {
	c, err := newMomentsConfig(options)
	if err != nil {
		return nil, err
	}

	return &PrunableMoments{
		samples:   newWindow(c.capacity),
		threshold: c.threshold,
	}, nil
}

// Update stores x and incorporates it. If a capacity is set and reached, the
// oldest sample is evicted and the statistics are recomputed from the
// retained samples, which costs O(capacity).
func (m *PrunableMoments) Update(x float64) {
	if _, evicted := m.samples.add(x); evicted {
		m.recalculate()
		return
	}
	m.state.update(x)
}

// PruneOutliers drops every sample farther than threshold standard
// deviations from the mean and recomputes the statistics from the remaining
// samples, in their original order. It does nothing with fewer than 2
// samples. It runs in O(n) and returns the number of dropped samples.
func (m *PrunableMoments) PruneOutliers() int {
	if m.state.Count < 2 {
		return 0
	}

	mean := m.state.Mean
	bound := m.threshold * m.state.StdDev()
	dropped := m.samples.filter(func(e float64) bool {
		return math.Abs(e-mean) <= bound
	})

	m.recalculate()
	return dropped
}

func (m *PrunableMoments) recalculate() {
	m.state = MomentsState{}
	m.samples.each(func(e float64) {
		m.state.update(e)
	})
}

// Samples returns a copy of the retained samples, oldest first.
func (m *PrunableMoments) Samples() []float64 {
	return m.samples.slice()
}

// Count returns the number of retained samples.
func (m *PrunableMoments) Count() uint64 {
	return m.state.Count
}

// Mean returns the mean of the retained samples.
func (m *PrunableMoments) Mean() float64 {
	return m.state.Mean
}

// Variance returns the sample variance, or NaN with fewer than 2 samples.
func (m *PrunableMoments) Variance() float64 {
	return m.state.Variance()
}

// StdDev returns the sample standard deviation, or NaN with fewer than 2
// samples.
func (m *PrunableMoments) StdDev() float64 {
	return m.state.StdDev()
}

// State returns a copy of the running statistics.
func (m *PrunableMoments) State() MomentsState {
	return m.state
}

// Reset discards every sample.
func (m *PrunableMoments) Reset() {
	m.state = MomentsState{}
	m.samples.reset()
}
