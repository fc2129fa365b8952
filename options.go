package welford

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

type momentsConfig struct {
	threshold float64
	fudge     float64
	capacity  int
}

func newMomentsConfig(options []MomentsOption) (momentsConfig, error) {
	c := momentsConfig{
		threshold: DefaultThreshold,
		fudge:     DefaultFudgeFactor,
	}
	for _, opt := range options {
		if err := opt(&c); err != nil {
			return momentsConfig{}, err
		}
	}
	return c, nil
}

// A MomentsOption configures PrunableMoments or ConstantMemoryMoments at
// construction.
type MomentsOption func(c *momentsConfig) error

// Threshold sets how many standard deviations away from the mean a sample
// has to be to count as an outlier. It must be a positive finite number.
// By default, the threshold is 2.0.
func Threshold(k float64) MomentsOption {
	return func(c *momentsConfig) error {
		if !(k > 0) || math.IsInf(k, 0) {
			return fmt.Errorf("welford: threshold %v: %w", k, ErrInvalidConfig)
		}
		c.threshold = k
		return nil
	}
}

// FudgeFactor sets the fraction of an outlier's deviation that
// ConstantMemoryMoments adds to the mean. It accepts values from 0.0 to 1.0.
// By default, the fudge factor is 0.3.
func FudgeFactor(f float64) MomentsOption {
	return func(c *momentsConfig) error {
		if !(f >= 0 && f <= 1) {
			return fmt.Errorf("welford: fudge factor %v outside [0, 1]: %w", f, ErrInvalidConfig)
		}
		c.fudge = f
		return nil
	}
}

// Capacity bounds the number of samples kept by PrunableMoments. Once full,
// the oldest sample is evicted for every new one. A capacity of 0 keeps every
// sample, which is the default. ConstantMemoryMoments ignores this option.
func Capacity(n int) MomentsOption {
	return func(c *momentsConfig) error {
		if n < 0 {
			return fmt.Errorf("welford: capacity %d: %w", n, ErrInvalidConfig)
		}
		c.capacity = n
		return nil
	}
}

// An Option configures a DecayingAverage.
type Option func(a *DecayingAverage) (Option, error)

// Options applies options to the average and returns the option that
// restores the previous value of the last option passed.
func (a *DecayingAverage) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(a)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

// Alpha sets the smoothing factor from a raw value. See
// DecayingAverage.SetAlpha.
func Alpha(raw float64) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.alpha
		a.SetAlpha(raw)
		return alphaValue(old), nil
	}
}

func alphaValue(v float64) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.alpha
		a.alpha = v
		return alphaValue(old), nil
	}
}

// AlphaIncrement sets the ramp applied to alpha on every accumulated sample
// from a raw value. See DecayingAverage.SetAlphaIncrement.
func AlphaIncrement(raw float64) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.alphaIncr
		a.SetAlphaIncrement(raw)
		return alphaIncrementValue(old), nil
	}
}

func alphaIncrementValue(v float64) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.alphaIncr
		a.alphaIncr = v
		return alphaIncrementValue(old), nil
	}
}

// OutlierBand enables outlier gating once minDatapoints samples have been
// accumulated. See DecayingAverage.DefineOutlierMinMax.
func OutlierBand(min, max, minDatapoints float64) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.outliers
		if err := a.DefineOutlierMinMax(&min, &max, minDatapoints); err != nil {
			return nil, err
		}
		return outlierValue(old), nil
	}
}

// NoOutliers disables outlier gating, which is the default.
func NoOutliers() Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.outliers
		if err := a.DefineOutlierMinMax(nil, nil, Unbounded); err != nil {
			return nil, err
		}
		return outlierValue(old), nil
	}
}

func outlierValue(v outlierGate) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.outliers
		a.outliers = v
		return outlierValue(old), nil
	}
}

// WithLogger sets the logger used to report rejected samples and
// configurations. By default, nothing is logged.
func WithLogger(log *zap.Logger) Option {
	return func(a *DecayingAverage) (Option, error) {
		old := a.log
		if log == nil {
			log = zap.NewNop()
		}
		a.log = log
		return WithLogger(old), nil
	}
}
