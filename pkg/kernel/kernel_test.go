package kernel

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- fixtures ---

// tetrahedron returns a closed, outward-oriented tetrahedron.
func tetrahedron() *Mesh {
	return &Mesh{
		Name: "tet",
		Vertices: []v3.Vec{
			{X: 1, Y: 1, Z: 1},
			{X: -1, Y: -1, Z: 1},
			{X: -1, Y: 1, Z: -1},
			{X: 1, Y: -1, Z: -1},
		},
		Faces: []Face{
			{0, 1, 3},
			{0, 2, 1},
			{0, 3, 2},
			{1, 2, 3},
		},
	}
}

// tetrahedronSoup returns the tetrahedron as 4 independent triangles with
// slightly perturbed copies of each shared vertex.
func tetrahedronSoup(noise float64) *Mesh {
	t := tetrahedron()
	raw := &Mesh{Name: t.Name}
	for i, f := range t.Faces {
		base := len(raw.Vertices)
		for k, idx := range f {
			v := t.Vertices[idx]
			// Alternate the sign so copies straddle the original.
			d := noise
			if (i+k)%2 == 1 {
				d = -noise
			}
			raw.Vertices = append(raw.Vertices, v3.Vec{X: v.X + d, Y: v.Y, Z: v.Z - d})
		}
		raw.Faces = append(raw.Faces, Face{base, base + 1, base + 2})
	}
	return raw
}

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []v3.Vec
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []v3.Vec{{X: 1, Y: 2, Z: 3}}, 1},
		{"four vertices", tetrahedron().Vertices, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name  string
		faces []Face
		want  int
	}{
		{"empty", nil, 0},
		{"one triangle", []Face{{0, 1, 2}}, 1},
		{"two triangles", []Face{{0, 1, 2}, {2, 3, 0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Faces: tt.faces}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []v3.Vec{{X: 1, Y: 2, Z: 3}}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestTetrahedronTopology(t *testing.T) {
	m := tetrahedron()
	if got := m.EdgeCount(); got != 6 {
		t.Errorf("EdgeCount() = %d, want 6", got)
	}
	if got := m.EulerCharacteristic(); got != 2 {
		t.Errorf("EulerCharacteristic() = %d, want 2", got)
	}
	if err := m.CheckClosed(); err != nil {
		t.Errorf("CheckClosed() = %v, want nil", err)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	for i := range m.Faces {
		f := m.Faces[i]
		centroid := m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]])
		if m.FaceNormal(i).Dot(centroid) <= 0 {
			t.Errorf("face %d points inward", i)
		}
	}
}

func TestCheckClosedOpenMesh(t *testing.T) {
	m := tetrahedron()
	m.Faces = m.Faces[:3]
	if err := m.CheckClosed(); err == nil {
		t.Fatal("expected error for mesh with a missing face")
	}
}

func TestCheckClosedInconsistentWinding(t *testing.T) {
	m := tetrahedron()
	m.Faces[0] = m.Faces[0].Reversed()
	if err := m.CheckClosed(); err == nil {
		t.Fatal("expected error for mesh with a flipped face")
	}
}

func TestValidateRejectsBadIndices(t *testing.T) {
	tests := []struct {
		name string
		face Face
	}{
		{"out of range", Face{0, 1, 7}},
		{"negative", Face{-1, 1, 2}},
		{"degenerate", Face{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tetrahedron()
			m.Faces = append(m.Faces, tt.face)
			if err := m.Validate(); err == nil {
				t.Errorf("Validate() accepted face %v", tt.face)
			}
		})
	}
}

func TestSwapXZ(t *testing.T) {
	m := tetrahedron()
	m.Vertices[0] = v3.Vec{X: 1, Y: 2, Z: 3}
	s := m.SwapXZ()

	if s.Vertices[0] != (v3.Vec{X: 3, Y: 2, Z: 1}) {
		t.Errorf("SwapXZ vertex 0 = %v, want {3 2 1}", s.Vertices[0])
	}
	if s.Faces[0] != m.Faces[0].Reversed() {
		t.Errorf("SwapXZ face 0 = %v, want reversed %v", s.Faces[0], m.Faces[0])
	}
	// Original must be untouched.
	if m.Vertices[0] != (v3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Error("SwapXZ mutated its receiver")
	}
}

func TestScaled(t *testing.T) {
	m := tetrahedron().Scaled(2)
	want := math.Sqrt(12)
	for i, v := range m.Vertices {
		if math.Abs(v.Length()-want) > 1e-12 {
			t.Errorf("vertex %d length = %f, want %f", i, v.Length(), want)
		}
	}
}

func TestTranslated(t *testing.T) {
	src := tetrahedron()
	d := v3.Vec{X: 0, Y: 0, Z: 0.5}
	m := src.Translated(d)
	for i, v := range m.Vertices {
		if v != src.Vertices[i].Add(d) {
			t.Errorf("vertex %d = %v, want %v", i, v, src.Vertices[i].Add(d))
		}
	}
	if math.Abs(m.SignedVolume()-src.SignedVolume()) > 1e-12 {
		t.Error("translation should not change the enclosed volume")
	}
	if src.Vertices[0].Z != 1 {
		t.Error("Translated must not modify the source mesh")
	}
}

func TestAppendOffsetsFaces(t *testing.T) {
	m := tetrahedron()
	m.Append(tetrahedron())
	if m.VertexCount() != 8 || m.TriangleCount() != 8 {
		t.Fatalf("Append produced %d vertices / %d faces, want 8 / 8", m.VertexCount(), m.TriangleCount())
	}
	if m.Faces[4] != (Face{4, 5, 7}) {
		t.Errorf("appended face = %v, want {4 5 7}", m.Faces[4])
	}
}

func TestFlatten(t *testing.T) {
	m := tetrahedron()
	verts, normals, indices := m.Flatten()
	if len(verts) != 12 || len(normals) != 12 {
		t.Fatalf("Flatten lengths: vertices %d normals %d, want 12 each", len(verts), len(normals))
	}
	if len(indices) != 12 {
		t.Fatalf("Flatten indices length %d, want 12", len(indices))
	}
	// Vertex normals of a regular tetrahedron point along the vertex direction.
	for i := 0; i < 4; i++ {
		n := v3.Vec{X: float64(normals[i*3]), Y: float64(normals[i*3+1]), Z: float64(normals[i*3+2])}
		dir := m.Vertices[i].Normalize()
		if n.Dot(dir) < 0.999 {
			t.Errorf("vertex %d normal %v not aligned with %v", i, n, dir)
		}
	}
}

// --- welding ---

func TestWeldMergesNearDuplicates(t *testing.T) {
	raw := tetrahedronSoup(1e-12)
	welded, err := Weld(raw, DefaultWeldPrecision)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	if welded.VertexCount() != 4 {
		t.Errorf("welded vertex count = %d, want 4", welded.VertexCount())
	}
	if welded.TriangleCount() != 4 {
		t.Errorf("welded triangle count = %d, want 4", welded.TriangleCount())
	}
	if err := welded.CheckClosed(); err != nil {
		t.Errorf("welded mesh not closed: %v", err)
	}
	if welded.EulerCharacteristic() != 2 {
		t.Errorf("Euler characteristic = %d, want 2", welded.EulerCharacteristic())
	}
}

func TestWeldKeepsDistinctVertices(t *testing.T) {
	// A 1e-6 perturbation is far above the 9-decimal rounding bucket.
	raw := tetrahedronSoup(1e-6)
	welded, err := Weld(raw, DefaultWeldPrecision)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	if welded.VertexCount() == 4 {
		t.Error("Weld merged vertices that differ by 1e-6")
	}
}

func TestWeldFirstSeenOrder(t *testing.T) {
	raw := tetrahedronSoup(0)
	welded, err := Weld(raw, 6)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	// The first face introduces vertices 0, 1, 2 in order.
	if welded.Faces[0] != (Face{0, 1, 2}) {
		t.Errorf("first face = %v, want {0 1 2}", welded.Faces[0])
	}
	if welded.Vertices[0] != raw.Vertices[0] {
		t.Errorf("first vertex = %v, want %v", welded.Vertices[0], raw.Vertices[0])
	}
}

func TestWeldOutOfRangeIndex(t *testing.T) {
	raw := tetrahedron()
	raw.Faces = append(raw.Faces, Face{0, 1, 42})
	_, err := Weld(raw, DefaultWeldPrecision)
	if !errors.Is(err, ErrWeldInvariant) {
		t.Fatalf("expected ErrWeldInvariant, got %v", err)
	}
}

func TestWeldCollapsedFace(t *testing.T) {
	raw := &Mesh{
		Vertices: []v3.Vec{{X: 0}, {X: 1e-13}, {X: 1}},
		Faces:    []Face{{0, 1, 2}},
	}
	if _, err := Weld(raw, DefaultWeldPrecision); !errors.Is(err, ErrWeldInvariant) {
		t.Fatalf("expected ErrWeldInvariant for collapsed face, got %v", err)
	}

	welded, err := Welder{DropDegenerate: true}.Weld(raw)
	if err != nil {
		t.Fatalf("DropDegenerate weld failed: %v", err)
	}
	if welded.TriangleCount() != 0 {
		t.Errorf("expected collapsed face to be dropped, got %d faces", welded.TriangleCount())
	}
}

func TestWeldNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	raw := &Mesh{
		Vertices: []v3.Vec{
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: negZero, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}, {X: -1, Y: 0, Z: 0},
		},
		Faces: []Face{{0, 1, 2}, {3, 4, 5}},
	}
	welded, err := Weld(raw, DefaultWeldPrecision)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	if welded.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4 (-0 and +0 must weld)", welded.VertexCount())
	}
}

func TestWeldAcrossCellBoundary(t *testing.T) {
	// The two copies of the shared edge lie within tolerance of each other
	// but on opposite sides of a 1e-9 grid line.
	lo, hi := 5e-9-1e-13, 5e-9+1e-13
	raw := &Mesh{
		Vertices: []v3.Vec{
			{X: lo, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: hi, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1},
		},
		Faces: []Face{{0, 1, 2}, {3, 4, 5}},
	}
	welded, err := Weld(raw, DefaultWeldPrecision)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	if welded.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", welded.VertexCount())
	}
	if welded.Faces[1][0] != 0 {
		t.Errorf("second face = %v, want it to reuse vertex 0", welded.Faces[1])
	}
}

func TestWeldLargeCoordinates(t *testing.T) {
	// Copies of a large coordinate differ by a few ulps.
	x := 27.290131692561982 * 0.3090169943749474
	raw := &Mesh{
		Vertices: []v3.Vec{
			{X: x, Y: 1, Z: 2}, {X: 5, Y: 0, Z: 0}, {X: 0, Y: 5, Z: 0},
			{X: math.Nextafter(math.Nextafter(x, 100), 100), Y: 1, Z: 2}, {X: 0, Y: 5, Z: 0}, {X: 0, Y: 0, Z: 5},
		},
		Faces: []Face{{0, 1, 2}, {3, 4, 5}},
	}
	for p := MinWeldPrecision; p <= MaxWeldPrecision; p++ {
		welded, err := Weld(raw, p)
		if err != nil {
			t.Fatalf("precision %d: %v", p, err)
		}
		if welded.VertexCount() != 4 {
			t.Errorf("precision %d: vertex count = %d, want 4", p, welded.VertexCount())
		}
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. It always returns a scaled tetrahedron.
type stubKernel struct{}

func (stubKernel) Sphere(radius float64, frequency int) (*Mesh, error) {
	return tetrahedron().Scaled(radius / math.Sqrt(3)), nil
}

var _ Kernel = stubKernel{}

func TestStubKernel(t *testing.T) {
	var k Kernel = stubKernel{}
	m, err := k.Sphere(2, 1)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	for i, v := range m.Vertices {
		if math.Abs(v.Length()-2) > 1e-12 {
			t.Errorf("vertex %d length = %f, want 2", i, v.Length())
		}
	}
}

func TestSignedVolume(t *testing.T) {
	m := tetrahedron()
	// Regular tetrahedron inscribed in the cube [-1,1]³.
	want := 8.0 / 3.0
	if got := m.SignedVolume(); math.Abs(got-want) > 1e-12 {
		t.Errorf("SignedVolume() = %v, want %v", got, want)
	}
	if got := m.SwapXZ().SignedVolume(); math.Abs(got-want) > 1e-12 {
		t.Errorf("SwapXZ().SignedVolume() = %v, want %v", got, want)
	}
}
