package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVanderCorput(t *testing.T) {
	tests := []struct {
		index    uint64
		expected float32
	}{
		{0, 0},
		{1, 0.5},
		{2, 0.25},
		{3, 0.75},
		{4, 0.125},
		{5, 0.625},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, VanderCorput(tt.index), "index %d", tt.index)
	}
}

func TestRadicalInverseBase3(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, RadicalInverse(1, 3), 1e-6)
	assert.InDelta(t, 2.0/3.0, RadicalInverse(2, 3), 1e-6)
	assert.InDelta(t, 1.0/9.0, RadicalInverse(3, 3), 1e-6)
}

func TestHalton(t *testing.T) {
	p := Halton4D(1)
	assert.InDelta(t, 0.5, p.X, 1e-6)
	assert.InDelta(t, 1.0/3.0, p.Y, 1e-6)
	assert.InDelta(t, 0.2, p.Z, 1e-6)
	assert.InDelta(t, 1.0/7.0, p.W, 1e-6)

	sample := make([]float32, 3)
	Halton(5, sample)
	h := Halton3D(5)
	assert.Equal(t, []float32{h.X, h.Y, h.Z}, sample)
	assert.Equal(t, Vec2{h.X, h.Y}, Halton2D(5))
}

func TestHammersley(t *testing.T) {
	p := Hammersley3D(2, 8)
	assert.Equal(t, float32(0.25), p.X)
	assert.Equal(t, float32(0.25), p.Y)
	assert.InDelta(t, 2.0/3.0, p.Z, 1e-6)

	sample := make([]float32, 4)
	Hammersley(2, sample, 8)
	h := Hammersley4D(2, 8)
	assert.Equal(t, []float32{h.X, h.Y, h.Z, h.W}, sample)
	assert.Equal(t, Hammersley2D(3, 4), Roth(3, 4))

	assert.Panics(t, func() { Hammersley(8, sample, 8) })
}

func TestSequencesStayInUnitInterval(t *testing.T) {
	for i := uint64(0); i < 1024; i++ {
		p := Halton4D(i)
		for _, v := range []float32{p.X, p.Y, p.Z, p.W} {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.Less(t, v, float32(1))
		}
	}
}
