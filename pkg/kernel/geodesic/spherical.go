package geodesic

import "math"

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Icosahedron face constants. They define the solid being tessellated.
var (
	sin72 = math.Sin(72 * degToRad)
	cos72 = math.Cos(72 * degToRad)
	cos36 = math.Cos(36 * degToRad)
)

// SphericalPoint is a direction on the unit sphere in degrees.
type SphericalPoint struct {
	Azimuth    float64
	Colatitude float64
	Valid      bool
}

// MapToSphere projects a raw lattice point of a patch of the given frequency
// onto the unit sphere. The resulting azimuth lies in [0, 180) and the
// colatitude in [0, 180].
func MapToSphere(p RawPoint, frequency int) SphericalPoint {
	x := p.X * sin72
	y := p.Y + p.X*cos72
	z := float64(frequency)/2 + p.Z/(2*cos36)

	var azimuth float64
	switch {
	case x == y:
		azimuth = 0
	case y == 0:
		azimuth = 90
	default:
		azimuth = math.Atan(x/y) * radToDeg
	}
	if azimuth < 0 {
		azimuth += 180
	}

	var colatitude float64
	if z == 0 {
		colatitude = 90
	} else {
		colatitude = math.Atan(math.Sqrt(x*x+y*y)/z) * radToDeg
	}
	if colatitude < 0 {
		colatitude += 180
	}

	return SphericalPoint{Azimuth: azimuth, Colatitude: colatitude, Valid: true}
}
