package geodesic

import "fmt"

// TopologyCounts holds the element counts of one subdivided face-patch.
type TopologyCounts struct {
	Vertices int
	Faces    int
	Edges    int
}

// Topology returns the vertex, face and edge counts of a face-patch of the
// given frequency. The patch is an open triangulated disk, so
// Edges = Vertices + Faces - 1.
func Topology(frequency int) (TopologyCounts, error) {
	if frequency < 1 {
		return TopologyCounts{}, fmt.Errorf("%s: frequency %d: %w", methodTopology, frequency, ErrInvalidFrequency)
	}
	vertices := 3
	for i := 2; i <= frequency; i++ {
		vertices += i + 1
	}
	faces := frequency * frequency
	return TopologyCounts{
		Vertices: vertices,
		Faces:    faces,
		Edges:    vertices + faces - 1,
	}, nil
}

// ShellTopology returns the counts of the welded sphere of the given
// frequency: 10f²+2 vertices, 20f² faces and 30f² edges.
func ShellTopology(frequency int) (TopologyCounts, error) {
	if frequency < 1 {
		return TopologyCounts{}, fmt.Errorf("%s: frequency %d: %w", methodTopology, frequency, ErrInvalidFrequency)
	}
	f2 := frequency * frequency
	return TopologyCounts{
		Vertices: 10*f2 + 2,
		Faces:    20 * f2,
		Edges:    30 * f2,
	}, nil
}
