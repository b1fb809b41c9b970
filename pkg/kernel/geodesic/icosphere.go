package geodesic

import (
	"fmt"
	"math"

	"github.com/chazu/geoshell/pkg/deform"
	"github.com/chazu/geoshell/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Kernel implements kernel.Kernel with icosahedral subdivision. The
// frequency passed to Sphere is the subdivision frequency.
type Kernel struct {
	// WeldPrecision is the number of decimal places, measured on the unit
	// sphere, within which seam vertices are merged.
	WeldPrecision int
}

// New returns a geodesic kernel with the default weld precision.
func New() *Kernel {
	return &Kernel{WeldPrecision: kernel.DefaultWeldPrecision}
}

// Sphere implements kernel.Kernel. The unit shell is welded first and then
// scaled, so the weld tolerance does not depend on the radius.
func (k *Kernel) Sphere(radius float64, frequency int) (*kernel.Mesh, error) {
	if err := checkFrequency(methodShell, frequency); err != nil {
		return nil, err
	}
	if err := checkRadius(methodShell, radius); err != nil {
		return nil, err
	}
	raw, err := RawShell(1, frequency)
	if err != nil {
		return nil, err
	}
	mesh, err := k.weldShell(raw, frequency)
	if err != nil {
		return nil, err
	}
	return mesh.Scaled(radius), nil
}

// weldShell welds a raw shell and checks that the result is the closed
// sphere of the given frequency.
func (k *Kernel) weldShell(raw *kernel.Mesh, frequency int) (*kernel.Mesh, error) {
	mesh, err := kernel.Weld(raw, k.WeldPrecision)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodShell, err)
	}
	want, err := ShellTopology(frequency)
	if err != nil {
		return nil, err
	}
	if err := mesh.CheckClosed(); err != nil {
		return nil, fmt.Errorf("%s: frequency %d: %v: %w", methodShell, frequency, err, kernel.ErrWeldInvariant)
	}
	if mesh.VertexCount() != want.Vertices {
		return nil, fmt.Errorf("%s: frequency %d: welded %d vertices, want %d: %w",
			methodShell, frequency, mesh.VertexCount(), want.Vertices, kernel.ErrWeldInvariant)
	}
	return mesh, nil
}

func checkRadius(method string, radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return fmt.Errorf("%s: radius %v: %w", method, radius, ErrInvalidRadius)
	}
	return nil
}

func checkFrequency(method string, frequency int) error {
	if frequency < 1 || frequency > MaxFrequency {
		return fmt.Errorf("%s: frequency %d: %w", method, frequency, ErrInvalidFrequency)
	}
	return nil
}

// patchMesh converts the replica of patch p on the given face into a mesh
// block of its own.
func patchMesh(p *Patch, radius float64, face int) (*kernel.Mesh, error) {
	points, err := Replicate(p.Points, face)
	if err != nil {
		return nil, err
	}
	band, _, _ := BandOf(face)

	m := &kernel.Mesh{
		Vertices: make([]v3.Vec, len(points)),
		Faces:    make([]kernel.Face, len(p.Triangles)),
	}
	for i, sp := range points {
		m.Vertices[i] = ToCartesian(sp, radius)
	}
	for i, t := range p.Triangles {
		f := kernel.Face(t)
		if band.Mirrored() {
			f = f.Reversed()
		}
		m.Faces[i] = f
	}
	return m, nil
}

// RawShell returns the 20 replicated patches concatenated into one
// unwelded mesh. Seam vertices appear once per patch.
func RawShell(radius float64, frequency int) (*kernel.Mesh, error) {
	if err := checkFrequency(methodShell, frequency); err != nil {
		return nil, err
	}
	if err := checkRadius(methodShell, radius); err != nil {
		return nil, err
	}
	p, err := NewPatch(frequency)
	if err != nil {
		return nil, err
	}

	raw := &kernel.Mesh{
		Vertices: make([]v3.Vec, 0, FaceCount*len(p.Points)),
		Faces:    make([]kernel.Face, 0, FaceCount*len(p.Triangles)),
	}
	for face := 0; face < FaceCount; face++ {
		m, err := patchMesh(p, radius, face)
		if err != nil {
			return nil, fmt.Errorf("%s: face %d: %w", methodShell, face, err)
		}
		raw.Append(m)
	}
	return raw, nil
}

// GenerateShell returns a welded geodesic sphere of the given radius and
// subdivision frequency: 10f²+2 vertices and 20f² triangles, all outward
// facing.
func GenerateShell(radius float64, frequency int) (*kernel.Mesh, error) {
	return New().Sphere(radius, frequency)
}

// GenerateFacePatch returns the single subdivided patch lying on
// icosahedron face n, as an open mesh.
func GenerateFacePatch(radius float64, frequency, face int) (*kernel.Mesh, error) {
	if err := checkFrequency(methodFacePatch, frequency); err != nil {
		return nil, err
	}
	if err := checkRadius(methodFacePatch, radius); err != nil {
		return nil, err
	}
	p, err := NewPatch(frequency)
	if err != nil {
		return nil, err
	}
	m, err := patchMesh(p, radius, face)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodFacePatch, err)
	}
	return m, nil
}

// GenerateLensInclusion warps a unit geodesic sphere into a lens of the
// given half-thickness, centred at depth baseRadius and spanning halfAngle
// radians around the +z axis.
func GenerateLensInclusion(halfThickness, baseRadius, halfAngle float64, frequency int) (*kernel.Mesh, error) {
	params := deform.LensParams{
		HalfThickness: halfThickness,
		BaseRadius:    baseRadius,
		HalfAngle:     halfAngle,
	}
	if err := checkFrequency(methodLens, frequency); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", methodLens, err)
	}
	unit, err := GenerateShell(1, frequency)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodLens, err)
	}
	return deform.Lens(unit, params)
}
