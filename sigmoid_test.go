package welford

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nan() float64 {
	return math.NaN()
}

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0.5, 0.5, 10))
	assert.Equal(t, 0.5, Sigmoid(3, 3, 1))
	assert.Equal(t, Sigmoid(0.7, 0.5, 10), Sigmoid(0.7, 0.5, -10), "steepness sign is ignored")

	prev := 0.0
	for x := -1.0; x <= 2; x += 0.05 {
		y := alphaTransform(x)
		assert.Greater(t, y, 0.0)
		assert.Less(t, y, 1.0)
		assert.GreaterOrEqual(t, y, prev)
		prev = y
	}
	assert.InDelta(t, 0.0067, alphaTransform(0), 1e-4)
	assert.InDelta(t, 0.9933, alphaTransform(1), 1e-4)
}

func TestSigmoidBipolar(t *testing.T) {
	assert.Equal(t, 0.0, SigmoidBipolar(0, 5.7))
	assert.Equal(t, 0.0, incrTransform(0))
	assert.InDelta(t, -incrTransform(0.3), incrTransform(-0.3), 1e-12)

	for _, x := range []float64{-10, -1, -0.1, 0.1, 1, 10} {
		y := incrTransform(x)
		assert.Greater(t, y, -1.0)
		assert.Less(t, y, 1.0)
		assert.Equal(t, math.Signbit(x), math.Signbit(y))
	}
}
