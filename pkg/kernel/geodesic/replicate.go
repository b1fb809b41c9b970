package geodesic

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// FaceCount is the number of faces of the icosahedron.
const FaceCount = 20

const facesPerBand = 5

// Band groups five icosahedron faces that share a replication rule.
type Band int

const (
	BandTopCap    Band = iota // faces 0-4
	BandUpperRing             // faces 5-9
	BandLowerRing             // faces 10-14
	BandBottomCap             // faces 15-19
)

func (b Band) String() string {
	switch b {
	case BandTopCap:
		return "top-cap"
	case BandUpperRing:
		return "upper-ring"
	case BandLowerRing:
		return "lower-ring"
	case BandBottomCap:
		return "bottom-cap"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// Mirrored reports whether the band is reflected through the equator.
// Mirrored replicas need their triangle winding reversed.
func (b Band) Mirrored() bool {
	return b == BandLowerRing || b == BandBottomCap
}

// BandOf returns the band of face n and n's position within it.
func BandOf(face int) (Band, int, error) {
	if face < 0 || face >= FaceCount {
		return 0, 0, fmt.Errorf("%s: face %d: %w", methodReplicate, face, ErrInvalidFace)
	}
	return Band(face / facesPerBand), face % facesPerBand, nil
}

// ringAzimuth is the azimuth of the rotation pole used for the rings, and
// poleColatitude is its colatitude: 180° minus the angle atan(2) between
// adjacent icosahedron vertices seen from the centre.
const ringAzimuth = 36.0

var poleColatitude = 180 - math.Atan(2)*radToDeg

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rotateColatitude returns the angular distance between the point
// (azimuth, colatitude) and the pole (targetAzimuth, pole) by the spherical
// law of cosines.
func rotateColatitude(targetAzimuth, azimuth, colatitude, pole float64) float64 {
	c := math.Cos(pole*degToRad)*math.Cos(colatitude*degToRad) +
		math.Sin(pole*degToRad)*math.Sin(colatitude*degToRad)*math.Cos((targetAzimuth-azimuth)*degToRad)
	return math.Acos(clamp(c, -1, 1)) * radToDeg
}

// rotateAzimuth returns the angle at the pole between the old north pole and
// the point, by the spherical law of sines. newColatitude is the result of
// rotateColatitude for the same point; a point sitting on the pole has no
// defined angle and maps to 0.
func rotateAzimuth(targetAzimuth, azimuth, colatitude, newColatitude float64) float64 {
	d := math.Sin(newColatitude * degToRad)
	if d == 0 {
		return 0
	}
	s := math.Sin(colatitude*degToRad) * math.Sin((targetAzimuth-azimuth)*degToRad) / d
	return math.Asin(clamp(s, -1, 1)) * radToDeg
}

// Replicate maps the points of the canonical patch onto icosahedron face n.
func Replicate(points []SphericalPoint, face int) ([]SphericalPoint, error) {
	band, k, err := BandOf(face)
	if err != nil {
		return nil, err
	}
	shift := 72 * float64(k)

	out := make([]SphericalPoint, len(points))
	for i, p := range points {
		var q SphericalPoint
		switch band {
		case BandTopCap:
			q.Azimuth = p.Azimuth + shift
			q.Colatitude = p.Colatitude
		case BandUpperRing:
			q.Colatitude = rotateColatitude(ringAzimuth, p.Azimuth, p.Colatitude, poleColatitude)
			q.Azimuth = rotateAzimuth(ringAzimuth, p.Azimuth, p.Colatitude, q.Colatitude) + ringAzimuth + shift
		case BandLowerRing:
			c := rotateColatitude(ringAzimuth, p.Azimuth, p.Colatitude, poleColatitude)
			q.Colatitude = 180 - c
			q.Azimuth = rotateAzimuth(ringAzimuth, p.Azimuth, p.Colatitude, c) + ringAzimuth + shift + 36
		case BandBottomCap:
			q.Azimuth = p.Azimuth + shift + 36
			q.Colatitude = 180 - p.Colatitude
		}
		q.Valid = true
		out[i] = q
	}
	return out, nil
}
