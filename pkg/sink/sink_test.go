package sink

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/chazu/geoshell/pkg/kernel/geodesic"
	"github.com/hpinc/go3mf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, name string, radius float64) *kernel.Mesh {
	t.Helper()
	m, err := geodesic.GenerateShell(radius, 2)
	require.NoError(t, err)
	m.Name = name
	return m
}

func TestHandlesInInsertionOrder(t *testing.T) {
	s := NewMemory()
	for i := 0; i < 5; i++ {
		assert.Equal(t, VertexHandle(i), s.AddVertex(float64(i), 0, 0))
	}
	require.NoError(t, s.AddFace(0, 1, 2))
	require.NoError(t, s.Commit("a"))

	// Handles restart for the next mesh.
	assert.Equal(t, VertexHandle(0), s.AddVertex(1, 1, 1))
}

func TestAddFaceUnknownHandle(t *testing.T) {
	s := NewMemory()
	s.AddVertex(0, 0, 0)
	s.AddVertex(1, 0, 0)
	assert.ErrorIs(t, s.AddFace(0, 1, 2), ErrUnknownHandle)

	require.NoError(t, s.Commit("partial"))
	// Handles from a committed mesh are no longer valid.
	assert.ErrorIs(t, s.AddFace(0, 0, 1), ErrUnknownHandle)
}

func TestCommitEmptyName(t *testing.T) {
	s := NewMemory()
	s.AddVertex(0, 0, 0)
	assert.ErrorIs(t, s.Commit(""), ErrEmptyName)
	assert.Empty(t, s.Meshes)
}

func TestEmitMemory(t *testing.T) {
	s := NewMemory()
	brain := shell(t, "brain", 0.8677)
	scalp := shell(t, "scalp", 1)
	require.NoError(t, Emit(s, brain))
	require.NoError(t, Emit(s, scalp))

	require.Len(t, s.Meshes, 2)
	got := s.Get("brain")
	require.NotNil(t, got)
	assert.Equal(t, brain.Vertices, got.Vertices)
	assert.Equal(t, brain.Faces, got.Faces)
	assert.NoError(t, got.CheckClosed())
	assert.Nil(t, s.Get("skull"))
}

func TestEmitRejectsBadMesh(t *testing.T) {
	m := &kernel.Mesh{Name: "bad", Faces: []kernel.Face{{0, 1, 2}}}
	assert.ErrorIs(t, Emit(NewMemory(), m), ErrUnknownHandle)

	unnamed := shell(t, "", 1)
	assert.ErrorIs(t, Emit(NewMemory(), unnamed), ErrEmptyName)
}

func TestSTLSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewSTL(dir)
	require.NoError(t, err)

	m := shell(t, "skull", 0.9467)
	require.NoError(t, Emit(s, m))
	require.Len(t, s.Paths, 1)
	assert.Equal(t, filepath.Join(dir, "skull.stl"), s.Paths[0])

	info, err := os.Stat(s.Paths[0])
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(84))
}

func TestThreeMFSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shells.3mf")
	s := NewThreeMF(path)
	require.NoError(t, Emit(s, shell(t, "brain", 0.8677)))
	require.NoError(t, Emit(s, shell(t, "scalp", 1)))
	assert.Equal(t, 2, s.Objects())
	require.NoError(t, s.Close())

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	found := false
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".model") {
			found = true
		}
	}
	assert.True(t, found, "3mf package has no model part")
}

func TestThreeMFSinkEmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.3mf")
	require.NoError(t, NewThreeMF(path).Close())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

type failingEncoder struct {
	encodeErr, closeErr error
	closed                bool
}

func (e *failingEncoder) Encode(*go3mf.Model) error { return e.encodeErr }

func (e *failingEncoder) Close() error {
	e.closed = true
	return e.closeErr
}

func TestEncodeModelReportsCloseError(t *testing.T) {
	errEncode := errors.New("disk full")
	errClose := errors.New("zip trailer")

	w := &failingEncoder{encodeErr: errEncode, closeErr: errClose}
	err := encodeModel(w, new(go3mf.Model), "x.3mf")
	assert.True(t, w.closed)
	assert.ErrorIs(t, err, errEncode)
	assert.ErrorIs(t, err, errClose)

	w = &failingEncoder{closeErr: errClose}
	assert.ErrorIs(t, encodeModel(w, new(go3mf.Model), "x.3mf"), errClose)

	w = &failingEncoder{}
	assert.NoError(t, encodeModel(w, new(go3mf.Model), "x.3mf"))
	assert.True(t, w.closed)
}

func TestJSONSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshes.json")
	s := NewJSON(path)
	m := shell(t, "brain", 0.8677)
	require.NoError(t, Emit(s, m))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []MeshData
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "brain", got[0].PartName)
	assert.Equal(t, colorPalette[0], got[0].Color)
	assert.Len(t, got[0].Vertices, m.VertexCount()*3)
	assert.Len(t, got[0].Normals, m.VertexCount()*3)
	assert.Len(t, got[0].Indices, m.TriangleCount()*3)
}

func TestJSONSinkInMemory(t *testing.T) {
	s := NewJSON("")
	require.NoError(t, Emit(s, shell(t, "a", 1)))
	require.NoError(t, Emit(s, shell(t, "b", 2)))
	require.NoError(t, s.Close())
	require.Len(t, s.Meshes, 2)
	assert.NotEqual(t, s.Meshes[0].Color, s.Meshes[1].Color)
}
