package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Arithmetic(t *testing.T) {
	a := NewVector3(1, 2, 3)
	b := NewVector3(4, -5, 0.5)

	tests := []struct {
		name string
		got  Vector3
		want Vector3
	}{
		{"add", a.Add(b), NewVector3(5, -3, 3.5)},
		{"sub", a.Sub(b), NewVector3(-3, 7, 2.5)},
		{"mul", a.Mul(-2), NewVector3(-2, -4, -6)},
		{"cross x y", NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)), NewVector3(0, 0, 1)},
		{"cross anticommutes", b.Cross(a), a.Cross(b).Mul(-1)},
		{"min", a.Min(b), NewVector3(1, -5, 0.5)},
		{"max", a.Max(b), NewVector3(4, 2, 3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestVector3Metrics(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"length", NewVector3(2, -3, 6).Length(), 7},
		{"distance", NewVector3(1, 1, 1).Distance(NewVector3(1, 4, 5)), 5},
		{"dot", NewVector3(1, 2, 3).Dot(NewVector3(-2, 0.5, 4)), 11},
		{"dot orthogonal", NewVector3(1, 1, 0).Dot(NewVector3(-1, 1, 7)), 0},
		{"normalized length", NewVector3(0.1, -7, 300).Normalize().Length(), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.got, 1e-12)
		})
	}
}

func TestVector3NormalizeZero(t *testing.T) {
	assert.Equal(t, Vector3{}, Vector3{}.Normalize())
}

func TestVector3Float32RoundTrip(t *testing.T) {
	v := NewVector3(1.5, -2.25, 1e3)
	assert.Equal(t, v, FromFloat32(v.Float32()))
}

func TestVector3IsFinite(t *testing.T) {
	assert.True(t, NewVector3(1, 2, 3).IsFinite())
	assert.False(t, NewVector3(math.Inf(1), 0, 0).IsFinite())
	assert.False(t, NewVector3(0, math.Inf(-1), 0).IsFinite())
	assert.False(t, NewVector3(0, 0, math.NaN()).IsFinite())
}
