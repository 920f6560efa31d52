package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationEqual(t *testing.T) {
	a := NewLocation(51.5074, -0.1278)
	b := NewLocation(51.5074, -0.1278)
	c := NewLocation(51.5075, -0.1278)

	assert.True(t, a.Equal(b), "expected equal locations built from identical coordinates")
	assert.False(t, a.Equal(c), "expected distinct locations to compare unequal")
}

func TestLocationKeyStability(t *testing.T) {
	a := NewLocation(51.5074, -0.1278)
	b := NewLocation(51.5074, -0.1278)

	assert.Equal(t, a.Key(), b.Key())
}

func TestLocationRoundTrip(t *testing.T) {
	l := NewLocation(40.7128, -74.0060)
	assert.InDelta(t, 40.7128, l.Latitude(), 1e-6)
	assert.InDelta(t, -74.0060, l.Longitude(), 1e-6)
}
