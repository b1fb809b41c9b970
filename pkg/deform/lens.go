// Package deform warps meshes produced by a kernel into other closed
// shapes without changing their connectivity.
package deform

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/geoshell/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidLens indicates lens parameters that cannot produce a closed,
// non-inverted surface.
var ErrInvalidLens = errors.New("deform: invalid lens parameters")

// LensParams describe a lens-shaped inclusion lying between two spherical
// shells.
type LensParams struct {
	// HalfThickness is h: the lens extends h/2 above and below BaseRadius.
	HalfThickness float64
	// BaseRadius is R, the distance of the lens mid-surface from the origin.
	BaseRadius float64
	// HalfAngle is θ in radians, the angular half-extent around +z.
	HalfAngle float64
}

// Validate checks R > 0, h >= 0, h/2 < R and θ >= 0, all finite.
func (p LensParams) Validate() error {
	for _, v := range []float64{p.HalfThickness, p.BaseRadius, p.HalfAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite parameter in %+v: %w", p, ErrInvalidLens)
		}
	}
	switch {
	case p.BaseRadius <= 0:
		return fmt.Errorf("base radius %v must be positive: %w", p.BaseRadius, ErrInvalidLens)
	case p.HalfThickness < 0:
		return fmt.Errorf("half-thickness %v must not be negative: %w", p.HalfThickness, ErrInvalidLens)
	case p.HalfThickness/2 >= p.BaseRadius:
		return fmt.Errorf("half-thickness %v reaches the origin at base radius %v: %w",
			p.HalfThickness, p.BaseRadius, ErrInvalidLens)
	case p.HalfAngle < 0:
		return fmt.Errorf("half-angle %v must not be negative: %w", p.HalfAngle, ErrInvalidLens)
	}
	return nil
}

// LensPoint maps one point of the unit sphere onto the lens. The point's
// distance from the z axis sets its angular position, and its height sets
// the radial offset from the mid-surface.
func LensPoint(u v3.Vec, p LensParams) v3.Vec {
	phi := math.Atan2(u.Y, u.X)
	r := math.Sqrt(u.X*u.X + u.Y*u.Y)
	z := u.Z * p.HalfThickness / 2
	theta := p.HalfAngle * r / (1 + z/p.BaseRadius)

	rho := z + p.BaseRadius
	sinT, cosT := math.Sincos(theta)
	sinP, cosP := math.Sincos(phi)
	return v3.Vec{
		X: rho * sinT * cosP,
		Y: rho * sinT * sinP,
		Z: rho * cosT,
	}
}

// Lens returns a copy of unit with every vertex passed through LensPoint.
// Faces are copied unchanged. unit is expected to be a unit sphere.
func Lens(unit *kernel.Mesh, p LensParams) (*kernel.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if unit == nil || unit.IsEmpty() {
		return nil, fmt.Errorf("lens of empty mesh: %w", ErrInvalidLens)
	}
	out := unit.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = LensPoint(v, p)
	}
	return out, nil
}
