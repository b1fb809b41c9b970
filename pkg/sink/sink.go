// Package sink hands finished meshes to their consumers. A Sink receives a
// mesh one vertex and one face at a time and takes ownership of it on
// Commit; implementations store it in memory or write it to STL, 3MF or
// JSON files.
package sink

import (
	"errors"
	"fmt"

	"github.com/chazu/geoshell/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrUnknownHandle indicates a face referencing a vertex handle that was
	// not returned by AddVertex for the mesh being built.
	ErrUnknownHandle = errors.New("sink: unknown vertex handle")
	// ErrEmptyName indicates a Commit without a mesh name.
	ErrEmptyName = errors.New("sink: empty mesh name")
)

// VertexHandle identifies a vertex added to a sink. Handles are issued in
// insertion order starting at 0 and are only valid until the next Commit.
type VertexHandle uint32

// Sink consumes meshes.
type Sink interface {
	AddVertex(x, y, z float64) VertexHandle
	AddFace(v0, v1, v2 VertexHandle) error
	Commit(name string) error
}

// Emit streams m into s vertex by vertex, then face by face, and commits it
// under m.Name.
func Emit(s Sink, m *kernel.Mesh) error {
	handles := make([]VertexHandle, len(m.Vertices))
	for i, v := range m.Vertices {
		handles[i] = s.AddVertex(v.X, v.Y, v.Z)
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(handles) {
				return fmt.Errorf("emit %q: face %d references vertex %d of %d: %w",
					m.Name, i, idx, len(handles), ErrUnknownHandle)
			}
		}
		if err := s.AddFace(handles[f[0]], handles[f[1]], handles[f[2]]); err != nil {
			return fmt.Errorf("emit %q: face %d: %w", m.Name, i, err)
		}
	}
	return s.Commit(m.Name)
}

// builder accumulates the mesh under construction. Every sink in this
// package embeds one.
type builder struct {
	vertices []v3.Vec
	faces    []kernel.Face
}

func (b *builder) AddVertex(x, y, z float64) VertexHandle {
	b.vertices = append(b.vertices, v3.Vec{X: x, Y: y, Z: z})
	return VertexHandle(len(b.vertices) - 1)
}

func (b *builder) AddFace(v0, v1, v2 VertexHandle) error {
	n := VertexHandle(len(b.vertices))
	for _, h := range [3]VertexHandle{v0, v1, v2} {
		if h >= n {
			return fmt.Errorf("handle %d of %d: %w", h, n, ErrUnknownHandle)
		}
	}
	b.faces = append(b.faces, kernel.Face{int(v0), int(v1), int(v2)})
	return nil
}

// take returns the accumulated mesh under name and resets the builder.
func (b *builder) take(name string) (*kernel.Mesh, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	m := &kernel.Mesh{Name: name, Vertices: b.vertices, Faces: b.faces}
	b.vertices, b.faces = nil, nil
	return m, nil
}
