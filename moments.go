// Package welford provides streaming statistics for sampling loops: running
// mean and variance accumulators based on Welford's online algorithm, and a
// decaying average with outlier gating.
//
// None of the accumulators are safe for concurrent use. Each one is meant to
// be owned by a single sampling loop.
package welford

import "math"

// Moments is implemented by every running mean/variance strategy of this
// package, so that a caller can swap strategies without changing call sites.
type Moments interface {
	// Update incorporates a new sample.
	Update(x float64)
	// Count returns the number of samples currently incorporated.
	Count() uint64
	// Mean returns the running mean, or 0 if no samples were incorporated.
	Mean() float64
	// Variance returns the sample variance, or NaN with fewer than 2 samples.
	Variance() float64
	// StdDev returns the square root of Variance.
	StdDev() float64
	// Reset discards every sample.
	Reset()
}

// Pruner is implemented by strategies that keep their samples and can discard
// outliers on demand. Pruning is not cheap and is never done implicitly.
type Pruner interface {
	// PruneOutliers removes the samples that deviate too much from the mean
	// and returns how many were removed.
	PruneOutliers() int
}

// MomentsState holds the running statistics shared by the moments
// strategies.
type MomentsState struct {
	Count uint64  // number of samples
	Mean  float64 // running mean
	M2    float64 // sum of squared deviations from the mean
}

// update adds x using Welford's online algorithm and returns the deviation of
// x from the mean before the update.
func (s *MomentsState) update(x float64) float64 {
	s.Count++
	delta := x - s.Mean
	s.Mean += delta / float64(s.Count)
	delta2 := x - s.Mean
	s.M2 += delta * delta2
	return delta
}

// Variance returns M2/(Count-1), or NaN if Count < 2.
func (s MomentsState) Variance() float64 {
	if s.Count < 2 {
		return math.NaN()
	}
	return s.M2 / float64(s.Count-1)
}

// StdDev returns the square root of the variance, or NaN if Count < 2.
func (s MomentsState) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// RunningMoments computes the mean and variance of a stream in O(1) time and
// memory per sample. The zero value is ready to use.
type RunningMoments struct {
	state MomentsState
}

// NewRunningMoments returns an empty RunningMoments.
func NewRunningMoments() *RunningMoments {
	return &RunningMoments{}
}

// Update incorporates x.
func (m *RunningMoments) Update(x float64) {
	m.state.update(x)
}

// Count returns the number of samples seen.
func (m *RunningMoments) Count() uint64 {
	return m.state.Count
}

// Mean returns the running mean.
func (m *RunningMoments) Mean() float64 {
	return m.state.Mean
}

// Variance returns the sample variance, or NaN with fewer than 2 samples.
func (m *RunningMoments) Variance() float64 {
	return m.state.Variance()
}

// StdDev returns the sample standard deviation, or NaN with fewer than 2
// samples.
func (m *RunningMoments) StdDev() float64 {
	return m.state.StdDev()
}

// State returns a copy of the running statistics.
func (m *RunningMoments) State() MomentsState {
	return m.state
}

// Reset discards every sample.
func (m *RunningMoments) Reset() {
	m.state = MomentsState{}
}
