package welford

import "math"

// Sigmoid maps x into the open interval (0, 1) with a logistic curve that
// returns exactly 0.5 at center. Increasing steepness pushes the output closer
// to 0 and 1 for inputs away from center. The sign of steepness is ignored.
func Sigmoid(x, center, steepness float64) float64 {
	return 1 / (1 + math.Exp(-math.Abs(steepness)*(x-center)))
}

// SigmoidBipolar maps x into the open interval (-1, 1) and returns exactly 0
// for x == 0. The sign of steepness is ignored.
func SigmoidBipolar(x, steepness float64) float64 {
	return 2/(1+math.Exp(-math.Abs(steepness)*x)) - 1
}

func alphaTransform(raw float64) float64 {
	return Sigmoid(raw, alphaCenter, alphaSteepness)
}

func incrTransform(raw float64) float64 {
	if raw == 0 {
		return 0
	}
	return SigmoidBipolar(raw, incrSteepness)
}
