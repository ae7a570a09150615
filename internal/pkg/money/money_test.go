package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.36, Round2(0.36))
	assert.Equal(t, 3.2, Round2(100*0.029+0.30))
	assert.Equal(t, 1.01, Round2(1.005))
}

func TestMul(t *testing.T) {
	assert.Equal(t, 0.36, Mul(4.50, 0.08))
	assert.Equal(t, 21.5, Mul(10.75, 2))
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 4.86, Sum(4.50, 0.36))
}

func TestSub(t *testing.T) {
	assert.Equal(t, 96.8, Sub(100, 3.20))
}

func TestFloor(t *testing.T) {
	assert.Equal(t, int64(4), Floor(4.86))
	assert.Equal(t, int64(0), Floor(0))
}
