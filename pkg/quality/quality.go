// Package quality measures how well a generated shell approximates a
// sphere and how uniform its triangles are.
package quality

import (
	"fmt"
	"math"

	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a sample.
type Stats struct {
	Min, Max, Mean, StdDev float64
}

func summarize(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Stats{Min: floats.Min(x), Max: floats.Max(x), Mean: mean, StdDev: std}
}

// Ratio returns Max/Min, or +Inf when Min is zero.
func (s Stats) Ratio() float64 {
	if s.Min == 0 {
		return math.Inf(1)
	}
	return s.Max / s.Min
}

// Report describes one mesh.
type Report struct {
	Name      string
	Vertices  int
	Faces     int
	Edges     int
	Euler     int
	Closed    bool
	Volume    float64
	Radius    Stats
	EdgeLen   Stats
	SolidArea Stats

	// SolidAngle is the total solid angle subtended by the faces as seen
	// from the origin. It is 4π for a closed shell around the origin.
	SolidAngle float64
}

// Analyze builds the report for m.
func Analyze(m *kernel.Mesh) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("quality: %w", err)
	}
	r := &Report{
		Name:     m.Name,
		Vertices: m.VertexCount(),
		Faces:    m.TriangleCount(),
		Edges:    m.EdgeCount(),
		Euler:    m.EulerCharacteristic(),
		Closed:   m.CheckClosed() == nil,
		Volume:   m.SignedVolume(),
	}

	radii := make([]float64, len(m.Vertices))
	dirs := make([]s2.Point, len(m.Vertices))
	for i, v := range m.Vertices {
		radii[i] = v.Length()
		if radii[i] > 0 {
			dirs[i] = s2.PointFromCoords(v.X, v.Y, v.Z)
		}
	}
	r.Radius = summarize(radii)

	edges := make([]float64, 0, r.Edges)
	areas := make([]float64, 0, len(m.Faces))
	seen := make(map[[2]int]struct{}, r.Edges)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if _, ok := seen[[2]int{a, b}]; ok {
				continue
			}
			seen[[2]int{a, b}] = struct{}{}
			edges = append(edges, m.Vertices[a].Sub(m.Vertices[b]).Length())
		}
		areas = append(areas, s2.PointArea(dirs[f[0]], dirs[f[1]], dirs[f[2]]))
	}
	r.EdgeLen = summarize(edges)
	r.SolidArea = summarize(areas)
	r.SolidAngle = floats.Sum(areas)
	return r, nil
}

// String renders the report on one line.
func (r *Report) String() string {
	return fmt.Sprintf("%s: V=%d F=%d E=%d χ=%d closed=%t r=%.6g±%.2g edge=[%.4g, %.4g] area ratio=%.3f",
		r.Name, r.Vertices, r.Faces, r.Edges, r.Euler, r.Closed,
		r.Radius.Mean, r.Radius.StdDev, r.EdgeLen.Min, r.EdgeLen.Max, r.SolidArea.Ratio())
}
