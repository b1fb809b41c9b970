package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// STL writes each committed mesh to <dir>/<name>.stl.
type STL struct {
	builder
	dir string

	// Paths lists the files written so far.
	Paths []string
}

// NewSTL returns an STL sink writing into dir, creating it if needed.
func NewSTL(dir string) (*STL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stl sink: %w", err)
	}
	return &STL{dir: dir}, nil
}

// Commit implements Sink.
func (s *STL) Commit(name string) error {
	m, err := s.take(name)
	if err != nil {
		return err
	}
	tris := make([]*sdf.Triangle3, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = &sdf.Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	}
	path := filepath.Join(s.dir, name+".stl")
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("stl sink: write %s: %w", path, err)
	}
	s.Paths = append(s.Paths, path)
	return nil
}
