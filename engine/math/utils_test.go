package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUp(t *testing.T) {
	assert.Equal(t, uint64(0), RoundUp(uint64(0), uint64(16)))
	assert.Equal(t, uint64(16), RoundUp(uint64(1), uint64(16)))
	assert.Equal(t, uint64(16), RoundUp(uint64(16), uint64(16)))
	assert.Equal(t, uint64(32), RoundUp(uint64(17), uint64(16)))
	assert.Equal(t, 12, RoundUp(10, 4))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(3, 5, 10))
	assert.Equal(t, 10, Clamp(12, 5, 10))
	assert.Equal(t, 7, Clamp(7, 5, 10))
	assert.Equal(t, float32(1.5), Clamp(float32(1.5), float32(0), float32(2)))
}

func TestMin(t *testing.T) {
	assert.Equal(t, uint32(3), Min(uint32(3), uint32(8)))
	assert.Equal(t, uint32(3), Min(uint32(8), uint32(3)))
}
