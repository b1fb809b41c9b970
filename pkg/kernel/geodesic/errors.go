package geodesic

import "errors"

// Method tags used as error context.
const (
	methodTopology  = "Topology"
	methodLattice   = "Lattice"
	methodReplicate = "Replicate"
	methodShell     = "GenerateShell"
	methodFacePatch = "GenerateFacePatch"
	methodLens      = "GenerateLensInclusion"
)

// MaxFrequency is the largest subdivision frequency the generators accept.
// A shell of this frequency has 2621442 vertices.
const MaxFrequency = 512

// ErrInvalidFrequency indicates a subdivision frequency outside
// [1, MaxFrequency].
var ErrInvalidFrequency = errors.New("geodesic: invalid frequency")

// ErrInvalidRadius indicates a radius that is not a positive finite number.
var ErrInvalidRadius = errors.New("geodesic: invalid radius")

// ErrInvalidFace indicates an icosahedron face index outside [0, 20).
var ErrInvalidFace = errors.New("geodesic: invalid face index")
