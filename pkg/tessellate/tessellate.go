// Package tessellate walks a scene and produces triangle meshes using a
// geometry kernel. One mesh is produced per placed surface.
package tessellate

import (
	"fmt"

	"github.com/chazu/geoshell/pkg/deform"
	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/chazu/geoshell/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// placement is one uniform scale followed by a translation.
type placement struct {
	scale       float64
	translation v3.Vec
}

// transformStack accumulates placements during scene traversal.
type transformStack struct {
	entries []placement
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(p placement) {
	ts.entries = append(ts.entries, p)
}

func (ts *transformStack) pop() {
	if len(ts.entries) > 0 {
		ts.entries = ts.entries[:len(ts.entries)-1]
	}
}

// accumulated composes the stack into a single placement. The innermost
// entry is applied first.
func (ts *transformStack) accumulated() placement {
	acc := placement{scale: 1}
	for i := len(ts.entries) - 1; i >= 0; i-- {
		e := ts.entries[i]
		acc.scale *= e.scale
		acc.translation = acc.translation.MulScalar(e.scale).Add(e.translation)
	}
	return acc
}

// Tessellate walks the scene and produces one triangle mesh per surface
// reachable from the roots, using the provided geometry kernel. The
// tessellator is read-only and never mutates the scene.
func Tessellate(s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(s, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", root.DisplayName(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case scene.NodeShell, scene.NodeLens:
		return handleSurface(k, n, ts)

	case scene.NodeTransform:
		return handleTransform(s, k, n, ts)

	case scene.NodeGroup:
		return handleGroup(s, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// Surface meshes a single shell or lens node at the origin, with its pole
// applied but no placement.
func Surface(k kernel.Kernel, n *scene.Node) (*kernel.Mesh, error) {
	var (
		mesh *kernel.Mesh
		pole scene.Axis
		err  error
	)

	switch data := n.Data.(type) {
	case scene.ShellData:
		pole = data.Pole
		mesh, err = k.Sphere(data.Radius, data.Frequency)
		if err != nil {
			return nil, fmt.Errorf("shell %q: %w", n.DisplayName(), err)
		}

	case scene.LensData:
		pole = data.Pole
		params := deform.LensParams{
			HalfThickness: data.HalfThickness,
			BaseRadius:    data.BaseRadius,
			HalfAngle:     data.HalfAngle,
		}
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("lens %q: %w", n.DisplayName(), err)
		}
		unit, err := k.Sphere(1, data.Frequency)
		if err != nil {
			return nil, fmt.Errorf("lens %q: %w", n.DisplayName(), err)
		}
		mesh, err = deform.Lens(unit, params)
		if err != nil {
			return nil, fmt.Errorf("lens %q: %w", n.DisplayName(), err)
		}

	default:
		return nil, fmt.Errorf("surface node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	if pole == scene.AxisX {
		mesh = mesh.SwapXZ()
	}
	mesh.Name = n.DisplayName()
	return mesh, nil
}

// handleSurface meshes a surface and applies the accumulated placement.
func handleSurface(k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	mesh, err := Surface(k, n)
	if err != nil {
		return nil, err
	}

	p := ts.accumulated()
	if p.scale != 1 {
		mesh = mesh.Scaled(p.scale)
	}
	if p.translation != (v3.Vec{}) {
		mesh = mesh.Translated(p.translation)
	}
	return []*kernel.Mesh{mesh}, nil
}

// handleTransform pushes the placement, recurses into children, then pops.
func handleTransform(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	p := placement{scale: 1}
	if td.Translation != nil {
		p.translation = *td.Translation
	}
	if td.Scale != nil {
		p.scale = *td.Scale
	}
	ts.push(p)
	defer ts.pop()

	var meshes []*kernel.Mesh
	for _, child := range s.Children(n) {
		collected, err := walkNode(s, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// handleGroup recurses into children transparently.
func handleGroup(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range s.Children(n) {
		collected, err := walkNode(s, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
