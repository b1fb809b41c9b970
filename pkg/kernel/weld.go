package kernel

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultWeldPrecision is the number of decimal places within which two
// positions are treated as the same vertex.
const DefaultWeldPrecision = 9

// Precisions outside [MinWeldPrecision, MaxWeldPrecision] either merge
// distinct vertices of dense shells or fall below the seam noise of
// float64 trigonometry on a unit sphere.
const (
	MinWeldPrecision = 4
	MaxWeldPrecision = 12
)

// ErrWeldInvariant reports that the raw mesh handed to the welder is
// inconsistent with itself. It always indicates a defect upstream.
var ErrWeldInvariant = errors.New("kernel: weld invariant violated")

// weldKey is the grid cell of a position.
type weldKey [3]int64

// Welder merges coincident vertices of a raw mesh.
//
// Seam vertices shared by adjacent patches are computed along different
// trigonometric paths and are not bit-identical. Two positions weld when
// every coordinate differs by at most 10^-Precision. Positions are bucketed
// on a grid of that pitch and each lookup searches the 27 cells around the
// query, so copies straddling a cell boundary still meet.
type Welder struct {
	Precision int

	// DropDegenerate discards faces that collapse once their vertices are
	// merged instead of failing. Marching-cubes output contains such slivers.
	DropDegenerate bool
}

// Weld is shorthand for Welder{Precision: precision}.Weld(raw).
func Weld(raw *Mesh, precision int) (*Mesh, error) {
	return Welder{Precision: precision}.Weld(raw)
}

// vertexIndex finds previously welded vertices near a position.
type vertexIndex struct {
	tol   float64
	cells map[weldKey][]int
	out   *Mesh
}

func (x *vertexIndex) cell(v v3.Vec) weldKey {
	return weldKey{
		int64(math.Floor(v.X / x.tol)),
		int64(math.Floor(v.Y / x.tol)),
		int64(math.Floor(v.Z / x.tol)),
	}
}

func (x *vertexIndex) near(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) <= x.tol &&
		math.Abs(a.Y-b.Y) <= x.tol &&
		math.Abs(a.Z-b.Z) <= x.tol
}

// lookup returns the output index of v, appending v if no welded vertex
// lies within tolerance.
func (x *vertexIndex) lookup(v v3.Vec) int {
	c := x.cell(v)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range x.cells[weldKey{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if x.near(x.out.Vertices[id], v) {
						return id
					}
				}
			}
		}
	}
	id := len(x.out.Vertices)
	x.out.Vertices = append(x.out.Vertices, v)
	x.cells[c] = append(x.cells[c], id)
	return id
}

// Weld visits faces in order and assigns each referenced position the next
// free output index the first time it is seen. Unreferenced vertices are
// dropped. The input mesh is not modified.
func (w Welder) Weld(raw *Mesh) (*Mesh, error) {
	precision := w.Precision
	if precision <= 0 {
		precision = DefaultWeldPrecision
	}

	out := &Mesh{
		Name:     raw.Name,
		Vertices: make([]v3.Vec, 0, len(raw.Vertices)/2),
		Faces:    make([]Face, 0, len(raw.Faces)),
	}
	index := &vertexIndex{
		tol:   math.Pow(10, -float64(precision)),
		cells: make(map[weldKey][]int, len(raw.Vertices)/2),
		out:   out,
	}
	n := len(raw.Vertices)

	for i, f := range raw.Faces {
		var nf Face
		for k, idx := range f {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("weld: face %d references vertex %d of %d: %w", i, idx, n, ErrWeldInvariant)
			}
			nf[k] = index.lookup(raw.Vertices[idx])
		}
		if nf[0] == nf[1] || nf[1] == nf[2] || nf[0] == nf[2] {
			if w.DropDegenerate {
				continue
			}
			return nil, fmt.Errorf("weld: face %d collapses to %v: %w", i, nf, ErrWeldInvariant)
		}
		out.Faces = append(out.Faces, nf)
	}
	return out, nil
}
