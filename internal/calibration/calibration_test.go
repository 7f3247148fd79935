package calibration

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

func TestSolveAffineTranslation(t *testing.T) {
	src := [3]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	dst := [3]r2.Point{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 5, Y: 15}}

	got, err := SolveAffine(src, dst)
	require.NoError(t, err)

	a, b, c, d, tx, ty := got.Coefficients()
	assert.InDelta(t, 1, a, 1e-9)
	assert.InDelta(t, 0, b, 1e-9)
	assert.InDelta(t, 0, c, 1e-9)
	assert.InDelta(t, 1, d, 1e-9)
	assert.InDelta(t, 5, tx, 1e-9)
	assert.InDelta(t, 5, ty, 1e-9)
}

func TestSolveAffineExactness(t *testing.T) {
	tests := []struct {
		name string
		src  [3]r2.Point
		dst  [3]r2.Point
	}{
		{
			"rotation and scale",
			[3]r2.Point{{X: 100, Y: 120}, {X: 640, Y: 90}, {X: 300, Y: 520}},
			[3]r2.Point{{X: 140, Y: 80}, {X: 700, Y: 210}, {X: 210, Y: 560}},
		},
		{
			"mirror",
			[3]r2.Point{{X: 0, Y: 0}, {X: 800, Y: 0}, {X: 0, Y: 600}},
			[3]r2.Point{{X: 800, Y: 0}, {X: 0, Y: 0}, {X: 800, Y: 600}},
		},
		{
			"shear",
			[3]r2.Point{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 10, Y: 30}},
			[3]r2.Point{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 30, Y: 30}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolveAffine(tt.src, tt.dst)
			require.NoError(t, err)
			for i := range tt.src {
				p := got.Apply(tt.src[i], transform.Size{})
				assert.InDelta(t, tt.dst[i].X, p.X, 1e-9)
				assert.InDelta(t, tt.dst[i].Y, p.Y, 1e-9)
			}
			assert.InDelta(t, 0, Residual(got, tt.src[:], tt.dst[:]), 1e-9)
		})
	}
}

func TestSolveAffineDegenerate(t *testing.T) {
	dst := [3]r2.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 5}}

	collinear := [3]r2.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}}
	_, err := SolveAffine(collinear, dst)
	assert.ErrorIs(t, err, ErrDegenerate)

	repeated := [3]r2.Point{{X: 4, Y: 4}, {X: 4, Y: 4}, {X: 9, Y: 1}}
	_, err = SolveAffine(repeated, dst)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestFitAffineOverdetermined(t *testing.T) {
	want := transform.NewAffine(1.2, -0.1, 0.15, 0.95, 30, -12)
	src := []r2.Point{{X: 0, Y: 0}, {X: 400, Y: 20}, {X: 30, Y: 500}, {X: 700, Y: 580}, {X: 350, Y: 300}}
	dst := make([]r2.Point, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p, transform.Size{})
	}

	res, err := FitAffine(src, dst)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Residual, 1e-6)
	for i := range want.M {
		assert.InDelta(t, want.M[i], res.Transform.M[i], 1e-6)
	}
}

func TestFitAffineErrors(t *testing.T) {
	_, err := FitAffine([]r2.Point{{X: 1}}, []r2.Point{{X: 1}})
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = FitAffine([]r2.Point{{X: 1}}, nil)
	assert.Error(t, err)

	line := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 4}, {X: 3, Y: 6}}
	_, err = FitAffine(line, line)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	_, err := s.Solve()
	assert.ErrorIs(t, err, ErrIncomplete)

	for _, p := range []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}} {
		require.NoError(t, s.AddSource(p))
		require.NoError(t, s.AddDestination(p.Add(r2.Point{X: 5, Y: 5})))
	}
	assert.ErrorIs(t, s.AddSource(r2.Point{}), ErrSessionFull)
	assert.ErrorIs(t, s.AddDestination(r2.Point{}), ErrSessionFull)
	assert.True(t, s.Complete())

	aff, err := s.Solve()
	require.NoError(t, err)
	assert.InDelta(t, 5, aff.M[2], 1e-9)
	assert.Empty(t, s.Sources())
	assert.Empty(t, s.Destinations())
}

func TestSessionDegenerateDiscards(t *testing.T) {
	s := NewSession()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddSource(r2.Point{X: float64(i), Y: float64(i)}))
		require.NoError(t, s.AddDestination(r2.Point{X: float64(i), Y: float64(2 * i)}))
	}

	_, err := s.Solve()
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.False(t, s.Complete())
	assert.Empty(t, s.Sources())
}
