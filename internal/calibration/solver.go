// Package calibration derives an affine alignment from operator-picked
// point pairs.
package calibration

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/jengzang/floorheat-backend-go/internal/spatial"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

var (
	// ErrDegenerate is returned when the source points are (nearly) collinear
	ErrDegenerate = errors.New("degenerate calibration: source points are collinear")
	// ErrIncomplete is returned when a solve is requested before all pairs are picked
	ErrIncomplete = errors.New("calibration needs 3 source and 3 destination points")
)

// SolveAffine computes the unique affine transform mapping each source point
// onto its destination. Both triples are in canvas pixel space.
//
// The 3x3 homogeneous matrix [x y 1] of the sources is inverted by cofactor
// expansion and multiplied by the destination x and y vectors, which yields
// (a, b, tx) and (c, d, ty).
func SolveAffine(src, dst [3]r2.Point) (transform.Affine, error) {
	for i := 0; i < 3; i++ {
		if !spatial.IsFinitePoint(src[i]) || !spatial.IsFinitePoint(dst[i]) {
			return transform.Affine{}, fmt.Errorf("%w: non-finite point %d", ErrDegenerate, i)
		}
	}

	m := mat.NewDense(3, 3, []float64{
		src[0].X, src[0].Y, 1,
		src[1].X, src[1].Y, 1,
		src[2].X, src[2].Y, 1,
	})

	det := mat.Det(m)
	if math.Abs(det) < transform.DetEpsilon {
		return transform.Affine{}, ErrDegenerate
	}

	inv := cofactorInverse(m, det)

	xs := mat.NewVecDense(3, []float64{dst[0].X, dst[1].X, dst[2].X})
	ys := mat.NewVecDense(3, []float64{dst[0].Y, dst[1].Y, dst[2].Y})

	var row1, row2 mat.VecDense
	row1.MulVec(inv, xs)
	row2.MulVec(inv, ys)

	return transform.NewAffine(
		row1.AtVec(0), row1.AtVec(1),
		row2.AtVec(0), row2.AtVec(1),
		row1.AtVec(2), row2.AtVec(2),
	), nil
}

// cofactorInverse returns adj(m)/det for a 3x3 matrix
func cofactorInverse(m *mat.Dense, det float64) *mat.Dense {
	a := func(r, c int) float64 { return m.At(r, c) }

	// minor returns the determinant of m with row r and column c removed
	minor := func(r, c int) float64 {
		var rows, cols [2]int
		for i, k := 0, 0; i < 3; i++ {
			if i != r {
				rows[k] = i
				k++
			}
		}
		for j, k := 0, 0; j < 3; j++ {
			if j != c {
				cols[k] = j
				k++
			}
		}
		return a(rows[0], cols[0])*a(rows[1], cols[1]) - a(rows[0], cols[1])*a(rows[1], cols[0])
	}

	inv := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cof := minor(r, c)
			if (r+c)%2 == 1 {
				cof = -cof
			}
			// adjugate is the transposed cofactor matrix
			inv.Set(c, r, cof/det)
		}
	}
	return inv
}

// Residual returns the mean distance between the transformed sources and
// their destinations.
func Residual(t transform.Affine, src, dst []r2.Point) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}

	var total float64
	for i := range src {
		total += spatial.Distance(t.Apply(src[i], transform.Size{}), dst[i])
	}
	return total / float64(len(src))
}
