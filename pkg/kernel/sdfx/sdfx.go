// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It meshes an implicit
// sphere with marching cubes and serves as a reference backend for the
// geodesic kernel.
package sdfx

import (
	"fmt"

	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultCellsPerFrequency converts a subdivision frequency into a marching
// cubes resolution.
const DefaultCellsPerFrequency = 8

// minMeshCells keeps very low frequencies from producing an empty mesh.
const minMeshCells = 8

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cellsPerFrequency int
	precision         int
}

// New returns a new SdfxKernel. cellsPerFrequency <= 0 selects
// DefaultCellsPerFrequency and weldPrecision <= 0 selects
// kernel.DefaultWeldPrecision. The marching cubes soup is welded in model
// units, so weldPrecision counts decimal places at the requested radius.
func New(cellsPerFrequency, weldPrecision int) *SdfxKernel {
	if cellsPerFrequency <= 0 {
		cellsPerFrequency = DefaultCellsPerFrequency
	}
	if weldPrecision <= 0 {
		weldPrecision = kernel.DefaultWeldPrecision
	}
	return &SdfxKernel{
		cellsPerFrequency: cellsPerFrequency,
		precision:         weldPrecision,
	}
}

// WeldPrecision returns the precision used to weld the marching cubes soup.
func (k *SdfxKernel) WeldPrecision() int {
	return k.precision
}

// Cells returns the marching cubes resolution used for a frequency.
func (k *SdfxKernel) Cells(frequency int) int {
	cells := frequency * k.cellsPerFrequency
	if cells < minMeshCells {
		cells = minMeshCells
	}
	return cells
}

// SignedDistance returns the distance of p from the surface of a sphere of
// the given radius; negative inside.
func SignedDistance(radius float64, p v3.Vec) (float64, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return 0, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return s.Evaluate(p), nil
}

// Sphere meshes a sphere with marching cubes and welds the triangle soup
// into an indexed mesh.
func (k *SdfxKernel) Sphere(radius float64, frequency int) (*kernel.Mesh, error) {
	if frequency < 1 {
		return nil, fmt.Errorf("sdfx: frequency %d must be >= 1", frequency)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}

	renderer := render.NewMarchingCubesUniform(k.Cells(frequency))
	triangles := render.ToTriangles(s, renderer)

	raw := &kernel.Mesh{
		Vertices: make([]v3.Vec, 0, len(triangles)*3),
		Faces:    make([]kernel.Face, 0, len(triangles)),
	}
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			raw.Vertices = append(raw.Vertices, tri[j])
		}
		raw.Faces = append(raw.Faces, kernel.Face{i * 3, i*3 + 1, i*3 + 2})
	}

	mesh, err := kernel.Welder{Precision: k.precision, DropDegenerate: true}.Weld(raw)
	if err != nil {
		return nil, fmt.Errorf("sdfx: weld marching cubes output: %w", err)
	}
	return mesh, nil
}
