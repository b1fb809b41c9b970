package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpinc/go3mf"
)

// ThreeMF collects committed meshes as objects of a single 3MF model and
// writes the package on Close.
type ThreeMF struct {
	builder
	path  string
	model go3mf.Model
}

// NewThreeMF returns a sink that will write the model to path.
func NewThreeMF(path string) *ThreeMF {
	return &ThreeMF{path: path}
}

// Commit implements Sink. Every mesh becomes one object with a build item.
func (s *ThreeMF) Commit(name string) error {
	m, err := s.take(name)
	if err != nil {
		return err
	}
	mesh := new(go3mf.Mesh)
	mesh.Vertices.Vertex = make([]go3mf.Point3D, len(m.Vertices))
	for i, v := range m.Vertices {
		mesh.Vertices.Vertex[i] = go3mf.Point3D{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	mesh.Triangles.Triangle = make([]go3mf.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		mesh.Triangles.Triangle[i] = go3mf.Triangle{V1: uint32(f[0]), V2: uint32(f[1]), V3: uint32(f[2])}
	}

	id := uint32(len(s.model.Resources.Objects) + 1)
	s.model.Resources.Objects = append(s.model.Resources.Objects, &go3mf.Object{
		ID:   id,
		Name: name,
		Mesh: mesh,
	})
	s.model.Build.Items = append(s.model.Build.Items, &go3mf.Item{ObjectID: id})
	return nil
}

// Objects returns the number of committed objects.
func (s *ThreeMF) Objects() int {
	return len(s.model.Resources.Objects)
}

// Close writes the model. Nothing is written if no mesh was committed.
func (s *ThreeMF) Close() error {
	if s.Objects() == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("3mf sink: %w", err)
	}
	w, err := go3mf.CreateWriter(s.path)
	if err != nil {
		return fmt.Errorf("3mf sink: create %s: %w", s.path, err)
	}
	return encodeModel(w, &s.model, s.path)
}

// modelEncoder is the part of *go3mf.WriteCloser used by Close.
type modelEncoder interface {
	Encode(*go3mf.Model) error
	Close() error
}

// encodeModel encodes m and closes w. A failed close is reported together
// with a failed encode.
func encodeModel(w modelEncoder, m *go3mf.Model, path string) error {
	if err := w.Encode(m); err != nil {
		return errors.Join(fmt.Errorf("3mf sink: encode %s: %w", path, err), w.Close())
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("3mf sink: close %s: %w", path, err)
	}
	return nil
}
