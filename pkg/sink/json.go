package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// colorPalette assigns distinct display colors to committed meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the flat JSON mesh format consumed by viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// JSON collects committed meshes as MeshData. When constructed with a path
// the collection is written there on Close.
type JSON struct {
	builder
	path string

	Meshes []MeshData
}

// NewJSON returns a JSON sink. An empty path keeps the data in memory only.
func NewJSON(path string) *JSON {
	return &JSON{path: path, Meshes: []MeshData{}}
}

// Commit implements Sink.
func (s *JSON) Commit(name string) error {
	m, err := s.take(name)
	if err != nil {
		return err
	}
	vertices, normals, indices := m.Flatten()
	s.Meshes = append(s.Meshes, MeshData{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		PartName: name,
		Color:    colorPalette[len(s.Meshes)%len(colorPalette)],
	})
	return nil
}

// Close writes the collected meshes as a JSON array.
func (s *JSON) Close() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("json sink: %w", err)
	}
	data, err := json.Marshal(s.Meshes)
	if err != nil {
		return fmt.Errorf("json sink: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("json sink: write %s: %w", s.path, err)
	}
	return nil
}
