package welford

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

type outlierGate struct {
	set           bool
	minDelta      float64
	maxDelta      float64
	minDatapoints float64
}

var noOutliers = outlierGate{minDatapoints: Unbounded}

func (g outlierGate) active(datapoints uint64) bool {
	return g.set && !math.IsInf(g.minDatapoints, 1) && float64(datapoints) >= g.minDatapoints
}

// DecayingAverage is an exponential moving average. Every new sample x moves
// the average to alpha*x + (1-alpha)*average.
//
// Alpha can ramp up or down by a fixed increment on every accumulated sample,
// and samples far away from the average can be attenuated or rejected once
// enough data points have been accumulated.
type DecayingAverage struct {
	average     float64
	initialized bool
	datapoints  uint64

	alpha     float64
	alphaIncr float64
	outliers  outlierGate

	log *zap.Logger
}

// NewDecayingAverage returns a DecayingAverage with a raw alpha of 0.5, no
// ramp and no outlier gating, modified by options.
func NewDecayingAverage(options ...Option) (*DecayingAverage, error) {
	a := &DecayingAverage{
		alpha:    alphaTransform(DefaultAlpha),
		outliers: noOutliers,
		log:      zap.NewNop(),
	}
	if _, err := a.Options(options...); err != nil {
		return nil, err
	}

	return a, nil
}

// SetAlpha sets the smoothing factor to 1/(1+exp(-10*(raw-0.5))), which
// keeps it inside (0, 1). A raw value of 0.5 gives an alpha of exactly 0.5;
// values close to 0 or 1 saturate toward the bounds.
func (a *DecayingAverage) SetAlpha(raw float64) {
	a.alpha = alphaTransform(raw)
}

// SetAlphaIncrement sets the value added to alpha on every accumulated
// sample to 2/(1+exp(-5.7*raw))-1, which keeps it inside (-1, 1). A raw value
// of 0 disables the ramp.
func (a *DecayingAverage) SetAlphaIncrement(raw float64) {
	a.alphaIncr = incrTransform(raw)
}

// Alpha returns the current smoothing factor.
func (a *DecayingAverage) Alpha() float64 {
	return a.alpha
}

// AlphaIncrement returns the current ramp of alpha.
func (a *DecayingAverage) AlphaIncrement() float64 {
	return a.alphaIncr
}

// DefineOutlierMinMax configures outlier gating. Once minDatapoints samples
// have been accumulated, a sample whose distance to the average is greater
// than max is rejected, and one whose distance is between min and max is
// attenuated linearly: the closer to max, the less it moves the average.
//
// Both min and max must be given with min <= max, or both must be nil with
// minDatapoints set to Unbounded, which disables gating. Any other
// combination returns an error wrapping ErrInvalidConfig and disables
// gating.
func (a *DecayingAverage) DefineOutlierMinMax(min, max *float64, minDatapoints float64) error {
	err := validateOutliers(min, max, minDatapoints)
	if err != nil {
		a.outliers = noOutliers
		a.log.Warn("Outlier gating disabled", zap.Error(err))
		return err
	}

	if min == nil {
		a.outliers = noOutliers
		return nil
	}

	a.outliers = outlierGate{
		set:           true,
		minDelta:      *min,
		maxDelta:      *max,
		minDatapoints: minDatapoints,
	}
	return nil
}

func validateOutliers(min, max *float64, minDatapoints float64) error {
	if math.IsNaN(minDatapoints) {
		return fmt.Errorf("welford: minimum data points is NaN: %w", ErrInvalidConfig)
	}

	switch {
	case min == nil && max == nil:
		if !math.IsInf(minDatapoints, 1) {
			return fmt.Errorf("welford: outlier gating after %v data points needs both min and max: %w", minDatapoints, ErrInvalidConfig)
		}
		return nil
	case min == nil || max == nil:
		return fmt.Errorf("welford: outlier min and max must be set together: %w", ErrInvalidConfig)
	case math.IsNaN(*min) || math.IsNaN(*max):
		return fmt.Errorf("welford: outlier min %v, max %v: %w", *min, *max, ErrInvalidConfig)
	case *min > *max:
		return fmt.Errorf("welford: outlier min %v greater than max %v: %w", *min, *max, ErrInvalidConfig)
	}

	return nil
}

// OutlierMinMax returns the outlier configuration. ok is false when gating
// is disabled.
func (a *DecayingAverage) OutlierMinMax() (min, max, minDatapoints float64, ok bool) {
	g := a.outliers
	return g.minDelta, g.maxDelta, g.minDatapoints, g.set
}

// ClearAverage forgets the average and the data point count. Alpha, its ramp
// and the outlier configuration are kept.
func (a *DecayingAverage) ClearAverage() {
	a.average = 0
	a.initialized = false
	a.datapoints = 0
}

// Average returns the current average. ok is false if no sample was
// accumulated since creation or the last ClearAverage.
func (a *DecayingAverage) Average() (avg float64, ok bool) {
	return a.average, a.initialized
}

// DatapointCount returns the number of accumulated samples. Rejected samples
// are not counted.
func (a *DecayingAverage) DatapointCount() uint64 {
	return a.datapoints
}

// Accumulate adds x to the average and returns the new average. The first
// sample becomes the average as is. A rejected outlier leaves the average and
// the data point count unchanged.
func (a *DecayingAverage) Accumulate(x float64) float64 {
	if !a.initialized {
		a.average = x
		a.initialized = true
		a.datapoints = 1
		return a.average
	}

	a.datapoints++

	if a.alphaIncr != 0 {
		a.alpha = alphaTransform(a.alpha + a.alphaIncr)
	}

	alpha := a.alpha
	if g := a.outliers; g.active(a.datapoints) {
		delta := math.Abs(x - a.average)

		if delta > g.maxDelta {
			a.datapoints--
			a.log.Debug("Outlier rejected",
				zap.Float64("sample", x),
				zap.Float64("average", a.average),
				zap.Float64("delta", delta),
			)
			return a.average
		}

		if delta >= g.minDelta {
			scaler := 1.0
			if span := g.maxDelta - g.minDelta; span > 0 {
				scaler = (delta - g.minDelta) / span
			}
			alpha *= 1 - scaler
		}
	}

	a.average = alpha*x + (1-alpha)*a.average
	return a.average
}
