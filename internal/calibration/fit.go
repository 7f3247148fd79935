package calibration

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// FitResult holds a least-squares calibration and its mean residual in pixels
type FitResult struct {
	Transform transform.Affine
	Residual  float64
}

// FitAffine computes the least-squares affine transform for three or more
// point pairs. With exactly three pairs it is equivalent to SolveAffine.
func FitAffine(src, dst []r2.Point) (FitResult, error) {
	if len(src) != len(dst) {
		return FitResult{}, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	n := len(src)
	if n < 3 {
		return FitResult{}, ErrIncomplete
	}

	if n == 3 {
		t, err := SolveAffine([3]r2.Point{src[0], src[1], src[2]}, [3]r2.Point{dst[0], dst[1], dst[2]})
		if err != nil {
			return FitResult{}, err
		}
		return FitResult{Transform: t, Residual: Residual(t, src, dst)}, nil
	}

	if spread(src) < transform.DetEpsilon {
		return FitResult{}, ErrDegenerate
	}

	// Overdetermined system: each pair contributes one row for x' and one for y'
	a := mat.NewDense(n*2, 6, nil)
	b := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		a.Set(i*2, 0, x)
		a.Set(i*2, 1, y)
		a.Set(i*2, 2, 1)
		b.SetVec(i*2, dst[i].X)

		a.Set(i*2+1, 3, x)
		a.Set(i*2+1, 4, y)
		a.Set(i*2+1, 5, 1)
		b.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(a)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return FitResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	t := transform.NewAffine(
		params.AtVec(0), params.AtVec(1),
		params.AtVec(3), params.AtVec(4),
		params.AtVec(2), params.AtVec(5),
	)
	return FitResult{Transform: t, Residual: Residual(t, src, dst)}, nil
}

// spread returns the determinant of the centered second-moment matrix of
// the points divided by the product of its diagonal. The value is in [0,1]
// and zero when all points lie on one line.
func spread(points []r2.Point) float64 {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	var sxx, syy, sxy float64
	for _, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return math.Abs(sxx*syy-sxy*sxy) / (sxx * syy)
}
