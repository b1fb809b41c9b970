package geodesic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/geoshell/pkg/deform"
	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/chazu/geoshell/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireSphere checks the invariants every generated shell must satisfy.
func requireSphere(t *testing.T, m *kernel.Mesh, radius float64, frequency int) {
	t.Helper()

	want, err := ShellTopology(frequency)
	require.NoError(t, err)
	require.Equal(t, want.Vertices, m.VertexCount(), "vertex count")
	require.Equal(t, want.Faces, m.TriangleCount(), "face count")
	require.Equal(t, want.Edges, m.EdgeCount(), "edge count")
	require.Equal(t, 2, m.EulerCharacteristic())
	require.NoError(t, m.Validate())
	require.NoError(t, m.CheckClosed())

	for i, v := range m.Vertices {
		require.InDelta(t, radius, v.Length(), 1e-6*radius, "vertex %d", i)
	}
	for i := range m.Faces {
		f := m.Faces[i]
		centroid := m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]])
		require.Greater(t, m.FaceNormal(i).Dot(centroid), 0.0, "face %d points inward", i)
	}
}

func TestGenerateShellIcosahedron(t *testing.T) {
	m, err := GenerateShell(1, 1)
	require.NoError(t, err)
	requireSphere(t, m, 1, 1)

	// All icosahedron edges have the same length.
	var lengths []float64
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			lengths = append(lengths, m.Vertices[f[k]].Sub(m.Vertices[f[(k+1)%3]]).Length())
		}
	}
	want := 1 / math.Sin(2*math.Pi/5)
	for _, l := range lengths {
		assert.InDelta(t, want, l, 1e-9)
	}
}

func TestGenerateShellFrequencies(t *testing.T) {
	for _, f := range []int{1, 2, 3, 5, 8, 13, 20} {
		m, err := GenerateShell(1, f)
		require.NoError(t, err, "frequency %d", f)
		requireSphere(t, m, 1, f)
	}
}

func TestGenerateShellEEGRadii(t *testing.T) {
	// Brain, skull and scalp of a normalized four-shell head model.
	for _, r := range []float64{0.8677, 0.9200, 0.9467, 1.0} {
		m, err := GenerateShell(r, 8)
		require.NoError(t, err)
		requireSphere(t, m, r, 8)
		assert.Equal(t, 642, m.VertexCount())
		assert.Equal(t, 1280, m.TriangleCount())
	}
}

func TestGenerateShellOnSignedDistanceSurface(t *testing.T) {
	const radius = 2.5
	m, err := GenerateShell(radius, 6)
	require.NoError(t, err)
	for i, v := range m.Vertices {
		d, err := sdfx.SignedDistance(radius, v)
		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-6, "vertex %d", i)
	}
}

func TestGenerateShellVolumeApproachesSphere(t *testing.T) {
	sphere := 4.0 / 3.0 * math.Pi
	prev := 0.0
	for _, f := range []int{1, 2, 4, 8, 16} {
		m, err := GenerateShell(1, f)
		require.NoError(t, err)
		vol := m.SignedVolume()
		assert.Greater(t, vol, prev, "frequency %d", f)
		assert.Less(t, vol, sphere, "frequency %d", f)
		prev = vol
	}
	assert.InDelta(t, sphere, prev, 0.02)
}

func TestGenerateShellRejectsBadInput(t *testing.T) {
	_, err := GenerateShell(1, 0)
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := GenerateShell(r, 2)
		assert.ErrorIs(t, err, ErrInvalidRadius, "radius %v", r)
	}

	// Frequency is checked first.
	_, err = GenerateShell(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestGenerateShellLargeRadii(t *testing.T) {
	tests := []struct {
		radius    float64
		frequency int
	}{
		{27.290131692561982, 8},
		{47.486830769908806, 5},
	}
	for _, tt := range tests {
		m, err := GenerateShell(tt.radius, tt.frequency)
		require.NoError(t, err, "radius %v frequency %d", tt.radius, tt.frequency)
		requireSphere(t, m, tt.radius, tt.frequency)
	}
}

func TestGenerateShellRandomRadii(t *testing.T) {
	rng := rand.New(rand.NewSource(20261017))
	for i := 0; i < 300; i++ {
		radius := 0.01 + rng.Float64()*50
		frequency := 1 + rng.Intn(12)
		m, err := GenerateShell(radius, frequency)
		require.NoError(t, err, "radius %v frequency %d", radius, frequency)
		requireSphere(t, m, radius, frequency)
	}
}

func TestWeldPrecisionRange(t *testing.T) {
	for p := kernel.MinWeldPrecision; p <= kernel.MaxWeldPrecision; p++ {
		m, err := (&Kernel{WeldPrecision: p}).Sphere(1, 8)
		require.NoError(t, err, "precision %d", p)
		requireSphere(t, m, 1, 8)
	}
}

func TestWeldShellDetectsCrack(t *testing.T) {
	const f = 3
	raw, err := RawShell(1, f)
	require.NoError(t, err)
	// Move one copy of a patch corner off the seam.
	raw.Vertices[0] = raw.Vertices[0].Add(v3.Vec{X: 1e-3})

	_, err = New().weldShell(raw, f)
	assert.ErrorIs(t, err, kernel.ErrWeldInvariant)
}

func TestGenerateShellRejectsExcessiveFrequency(t *testing.T) {
	_, err := GenerateShell(1, MaxFrequency+1)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
	_, err = GenerateLensInclusion(0.1, 1, 0.3, MaxFrequency+1)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestKernelImplementsInterface(t *testing.T) {
	var k kernel.Kernel = New()
	m, err := k.Sphere(3, 4)
	require.NoError(t, err)
	requireSphere(t, m, 3, 4)

	coarse := &Kernel{WeldPrecision: 6}
	m, err = coarse.Sphere(3, 4)
	require.NoError(t, err)
	requireSphere(t, m, 3, 4)
}

func TestRawShellIsUnwelded(t *testing.T) {
	const f = 3
	raw, err := RawShell(1, f)
	require.NoError(t, err)
	patch, _ := Topology(f)
	assert.Equal(t, FaceCount*patch.Vertices, raw.VertexCount())
	assert.Equal(t, FaceCount*patch.Faces, raw.TriangleCount())
	assert.Error(t, raw.CheckClosed())
}

func TestGenerateFacePatch(t *testing.T) {
	const f = 4
	counts, err := Topology(f)
	require.NoError(t, err)

	for _, face := range []int{0, 7, 12, 19} {
		m, err := GenerateFacePatch(2, f, face)
		require.NoError(t, err)
		assert.Equal(t, counts.Vertices, m.VertexCount())
		assert.Equal(t, counts.Faces, m.TriangleCount())
		assert.Equal(t, counts.Edges, m.EdgeCount())
		assert.Equal(t, 1, m.EulerCharacteristic())
		for i := range m.Faces {
			f := m.Faces[i]
			c := m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]])
			assert.Greater(t, m.FaceNormal(i).Dot(c), 0.0, "face %d triangle %d", face, i)
		}
	}

	_, err = GenerateFacePatch(2, f, 20)
	assert.ErrorIs(t, err, ErrInvalidFace)
	_, err = GenerateFacePatch(0, f, 1)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = GenerateFacePatch(1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestGenerateLensInclusion(t *testing.T) {
	const (
		h = 0.02
		r = 0.9
		f = 8
	)
	theta := 30 * degToRad
	m, err := GenerateLensInclusion(h, r, theta, f)
	require.NoError(t, err)

	want, _ := ShellTopology(f)
	assert.Equal(t, want.Vertices, m.VertexCount())
	assert.Equal(t, want.Faces, m.TriangleCount())
	assert.NoError(t, m.CheckClosed())
	assert.Greater(t, m.SignedVolume(), 0.0)

	for _, v := range m.Vertices {
		l := v.Length()
		assert.GreaterOrEqual(t, l, r-h/2-1e-9)
		assert.LessOrEqual(t, l, r+h/2+1e-9)
		// Arc length from the +z axis never exceeds that of the mid-surface rim.
		assert.LessOrEqual(t, math.Acos(math.Min(1, v.Z/l))*l, theta*r+1e-9)
	}
}

func TestGenerateLensInclusionRejectsBadInput(t *testing.T) {
	_, err := GenerateLensInclusion(0.1, 1, 0.5, 0)
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = GenerateLensInclusion(2, 1, 0.5, 2)
	assert.ErrorIs(t, err, deform.ErrInvalidLens)

	_, err = GenerateLensInclusion(0.1, 0, 0.5, 2)
	assert.ErrorIs(t, err, deform.ErrInvalidLens)
}
