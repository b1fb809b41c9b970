package geodesic

// Patch is one subdivided icosahedron face in spherical coordinates,
// positioned on the canonical face 0.
type Patch struct {
	Frequency int
	Labels    []Label
	Points    []SphericalPoint
	Triangles []Triangle
}

// NewPatch builds the canonical patch of the given frequency.
func NewPatch(frequency int) (*Patch, error) {
	labels, raw, err := Lattice(frequency)
	if err != nil {
		return nil, err
	}
	points := make([]SphericalPoint, len(raw))
	for i, r := range raw {
		points[i] = MapToSphere(r, frequency)
	}
	return &Patch{
		Frequency: frequency,
		Labels:    labels,
		Points:    points,
		Triangles: PatchTriangles(labels, frequency),
	}, nil
}
