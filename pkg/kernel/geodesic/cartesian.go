package geodesic

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/s2"
)

// SnapTolerance is the magnitude below which a unit-sphere coordinate is
// replaced by exactly zero. Seam vertices produced by different faces rely
// on this to agree on the coordinate planes.
const SnapTolerance = 1e-7

func snap(c float64) float64 {
	if c < SnapTolerance && c > -SnapTolerance {
		return 0
	}
	return c
}

// ToCartesian converts a spherical point to cartesian coordinates on a
// sphere of the given radius. Components are snapped on the unit sphere
// before scaling.
func ToCartesian(p SphericalPoint, radius float64) v3.Vec {
	az := p.Azimuth * degToRad
	col := p.Colatitude * degToRad
	sinCol := math.Sin(col)
	unit := v3.Vec{
		X: snap(math.Cos(az) * sinCol),
		Y: snap(math.Sin(az) * sinCol),
		Z: snap(math.Cos(col)),
	}
	return unit.MulScalar(radius)
}

// ToSpherical is the inverse of ToCartesian for the direction of v. The
// azimuth is normalized to [0, 360). The zero vector has no direction and
// yields an invalid point.
func ToSpherical(v v3.Vec) SphericalPoint {
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		return SphericalPoint{}
	}
	ll := s2.LatLngFromPoint(s2.PointFromCoords(v.X, v.Y, v.Z))
	azimuth := ll.Lng.Degrees()
	if azimuth < 0 {
		azimuth += 360
	}
	return SphericalPoint{
		Azimuth:    azimuth,
		Colatitude: 90 - ll.Lat.Degrees(),
		Valid:      true,
	}
}
