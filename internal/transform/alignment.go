package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"golang.org/x/image/math/f64"
)

// DetEpsilon is the determinant magnitude below which an affine matrix is
// treated as non-invertible.
const DetEpsilon = 1e-10

// Mode names used when an alignment is persisted or reported
const (
	ModeSimple = "simple"
	ModeAffine = "affine"
)

// Alignment is the operator adjustment that lines the density layer up with
// the floor-plan image. It is either Simple or Affine, never both.
type Alignment interface {
	// Apply maps a canvas point to its aligned position
	Apply(p r2.Point, canvas Size) r2.Point
	// Invert undoes Apply. Non-invertible alignments return p unchanged.
	Invert(p r2.Point, canvas Size) r2.Point
	// Mode returns ModeSimple or ModeAffine
	Mode() string

	isAlignment()
}

// Simple is an offset/scale/rotation adjustment relative to the canvas center
type Simple struct {
	OffsetX  float64 `json:"offset_x"` // percent of canvas width
	OffsetY  float64 `json:"offset_y"` // percent of canvas height
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"` // degrees
}

// Identity returns the simple adjustment that leaves every point in place
func Identity() Simple {
	return Simple{ScaleX: 1, ScaleY: 1}
}

func (Simple) isAlignment() {}

// Mode implements Alignment
func (Simple) Mode() string { return ModeSimple }

// IsIdentity reports whether s leaves every point in place
func (s Simple) IsIdentity() bool {
	return s == Identity()
}

// Apply scales about the canvas center, rotates, translates back and adds
// the percentage offset.
func (s Simple) Apply(p r2.Point, canvas Size) r2.Point {
	c := canvas.Center()
	dx := (p.X - c.X) * s.ScaleX
	dy := (p.Y - c.Y) * s.ScaleY
	sin, cos := math.Sincos(s.Rotation * math.Pi / 180)
	return r2.Point{
		X: dx*cos - dy*sin + c.X + s.OffsetX/100*canvas.W,
		Y: dx*sin + dy*cos + c.Y + s.OffsetY/100*canvas.H,
	}
}

// Invert reverses the offset, then the rotation, then the scale. An axis
// with zero scale keeps its rotated value.
func (s Simple) Invert(p r2.Point, canvas Size) r2.Point {
	c := canvas.Center()
	dx := p.X - s.OffsetX/100*canvas.W - c.X
	dy := p.Y - s.OffsetY/100*canvas.H - c.Y
	sin, cos := math.Sincos(-s.Rotation * math.Pi / 180)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	if s.ScaleX != 0 {
		rx /= s.ScaleX
	}
	if s.ScaleY != 0 {
		ry /= s.ScaleY
	}
	return r2.Point{X: rx + c.X, Y: ry + c.Y}
}

// Affine maps canvas coordinates directly: (a·x + b·y + tx, c·x + d·y + ty).
// M is stored row-major as {a, b, tx, c, d, ty}.
type Affine struct {
	M f64.Aff3
}

// NewAffine builds an affine alignment from its six coefficients
func NewAffine(a, b, c, d, tx, ty float64) Affine {
	return Affine{M: f64.Aff3{a, b, tx, c, d, ty}}
}

func (Affine) isAlignment() {}

// Mode implements Alignment
func (Affine) Mode() string { return ModeAffine }

// Coefficients returns a, b, c, d, tx, ty
func (a Affine) Coefficients() (ca, cb, cc, cd, tx, ty float64) {
	return a.M[0], a.M[1], a.M[3], a.M[4], a.M[2], a.M[5]
}

// Det returns the determinant of the 2x2 linear part
func (a Affine) Det() float64 {
	return a.M[0]*a.M[4] - a.M[1]*a.M[3]
}

// Invertible reports whether the linear part can be inverted safely
func (a Affine) Invertible() bool {
	det := a.Det()
	return !math.IsNaN(det) && math.Abs(det) >= DetEpsilon
}

// Apply implements Alignment. The canvas size is not used.
func (a Affine) Apply(p r2.Point, _ Size) r2.Point {
	m := a.M
	return r2.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Invert removes the translation and applies the adjugate of the linear part
// divided by the determinant. Near-singular matrices return p unchanged.
func (a Affine) Invert(p r2.Point, _ Size) r2.Point {
	if !a.Invertible() {
		return p
	}
	m := a.M
	det := a.Det()
	x := p.X - m[2]
	y := p.Y - m[5]
	return r2.Point{
		X: (m[4]*x - m[1]*y) / det,
		Y: (-m[3]*x + m[0]*y) / det,
	}
}
