// Package geodesic builds geodesic spheres by subdividing a regular
// icosahedron.
//
// One triangular face of the icosahedron is subdivided into a lattice of
// frequency f (f² triangles) and projected onto the unit sphere in spherical
// coordinates. That patch is then replicated onto all 20 faces using four
// rotation rules, one per band of five faces:
//
//	faces  0-4   top cap     azimuth shift only
//	faces  5-9   upper ring  rotation about a pole at colatitude 180-atan(2)
//	faces 10-14  lower ring  upper ring mirrored through the equator
//	faces 15-19  bottom cap  top cap mirrored through the equator
//
// Each replica is converted to cartesian coordinates and the 20 patches are
// welded into a single closed mesh. All angles in this package are degrees.
//
// The pipeline stages use distinct value types (RawPoint, SphericalPoint,
// v3.Vec) and every index is 0-based.
package geodesic
