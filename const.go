package welford

import "math"

// Default configuration values.
const (
	// DefaultThreshold is the outlier threshold, in standard deviations, used
	// by PrunableMoments and ConstantMemoryMoments.
	DefaultThreshold = 2.0
	// DefaultFudgeFactor is the fraction of an outlier's deviation that
	// ConstantMemoryMoments adds to the mean.
	DefaultFudgeFactor = 0.3
	// DefaultAlpha is the raw smoothing factor of a DecayingAverage. It maps
	// to an effective alpha of exactly 0.5.
	DefaultAlpha = 0.5
	// DefaultAlphaIncrement disables alpha ramping.
	DefaultAlphaIncrement = 0.0
)

// Saturating transform parameters.
const (
	alphaCenter    = 0.5
	alphaSteepness = 10.0
	incrSteepness  = 5.7
)

// Unbounded disables outlier gating when used as the minimum number of data
// points of DefineOutlierMinMax.
var Unbounded = math.Inf(1)
