package sink

import "github.com/chazu/geoshell/pkg/kernel"

// Memory keeps committed meshes in commit order.
type Memory struct {
	builder
	Meshes []*kernel.Mesh
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Commit implements Sink.
func (s *Memory) Commit(name string) error {
	m, err := s.take(name)
	if err != nil {
		return err
	}
	s.Meshes = append(s.Meshes, m)
	return nil
}

// Get returns the committed mesh with the given name, or nil.
func (s *Memory) Get(name string) *kernel.Mesh {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}
