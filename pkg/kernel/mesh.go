package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a triangle given as three 0-based indices into Mesh.Vertices.
type Face [3]int

// Reversed returns the face with its winding flipped.
func (f Face) Reversed() Face {
	return Face{f[2], f[1], f[0]}
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string   `json:"name"`
	Vertices []v3.Vec `json:"vertices"`
	Faces    []Face   `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: make([]v3.Vec, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Faces, m.Faces)
	return out
}

// Append adds the vertices and faces of other to m, offsetting the face
// indices of other into the appended vertex block.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, Face{f[0] + base, f[1] + base, f[2] + base})
	}
}

// Scaled returns a copy of the mesh with every vertex multiplied by s.
func (m *Mesh) Scaled(s float64) *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = v.MulScalar(s)
	}
	return out
}

// Translated returns a copy of the mesh moved by d.
func (m *Mesh) Translated(d v3.Vec) *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = v.Add(d)
	}
	return out
}

// SwapXZ returns a copy of the mesh with the x and z axes exchanged, which
// moves the generation pole from +z onto +x. Face winding is reversed so the
// mirrored surface keeps outward-facing triangles.
func (m *Mesh) SwapXZ() *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = v3.Vec{X: v.Z, Y: v.Y, Z: v.X}
	}
	for i, f := range out.Faces {
		out.Faces[i] = f.Reversed()
	}
	return out
}

// Validate checks that every face references existing, distinct vertices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, idx, n)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("face %d is degenerate: %v", i, f)
		}
	}
	return nil
}

// edge is an undirected edge with lo < hi.
type edge struct{ lo, hi int }

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// EdgeCount returns the number of distinct undirected edges.
func (m *Mesh) EdgeCount() int {
	seen := make(map[edge]struct{}, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		seen[makeEdge(f[0], f[1])] = struct{}{}
		seen[makeEdge(f[1], f[2])] = struct{}{}
		seen[makeEdge(f[2], f[0])] = struct{}{}
	}
	return len(seen)
}

// EulerCharacteristic returns V - E + F. A closed sphere-like surface has 2.
func (m *Mesh) EulerCharacteristic() int {
	return m.VertexCount() - m.EdgeCount() + m.TriangleCount()
}

// CheckClosed verifies that the mesh is a closed, consistently oriented
// 2-manifold: every directed edge appears exactly once and its reverse
// appears exactly once.
func (m *Mesh) CheckClosed() error {
	directed := make(map[[2]int]int, len(m.Faces)*3)
	for i, f := range m.Faces {
		for k := 0; k < 3; k++ {
			e := [2]int{f[k], f[(k+1)%3]}
			if prev, ok := directed[e]; ok {
				return fmt.Errorf("edge %d->%d used by faces %d and %d with the same orientation", e[0], e[1], prev, i)
			}
			directed[e] = i
		}
	}
	for e, face := range directed {
		if _, ok := directed[[2]int{e[1], e[0]}]; !ok {
			return fmt.Errorf("edge %d->%d of face %d has no opposite half-edge", e[0], e[1], face)
		}
	}
	return nil
}

// FaceNormal returns the unnormalized normal of face i (right-hand rule).
func (m *Mesh) FaceNormal(i int) v3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// SignedVolume returns the volume enclosed by a closed mesh. It is positive
// when faces wind counter-clockwise seen from outside.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// Flatten converts the mesh to the flat float32 layout used by renderers:
// 3 floats per vertex, 3 floats per vertex normal (area-weighted average of
// the incident face normals), 3 uint32 per triangle.
func (m *Mesh) Flatten() (vertices, normals []float32, indices []uint32) {
	acc := make([]v3.Vec, len(m.Vertices))
	for i, f := range m.Faces {
		n := m.FaceNormal(i)
		for _, idx := range f {
			acc[idx] = acc[idx].Add(n)
		}
	}

	vertices = make([]float32, 0, len(m.Vertices)*3)
	normals = make([]float32, 0, len(m.Vertices)*3)
	for i, v := range m.Vertices {
		vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
		n := acc[i]
		if l := n.Length(); l > 0 {
			n = n.DivScalar(l)
		}
		normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
	}

	indices = make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return vertices, normals, indices
}
