package scene

import "fmt"

// DefaultFrequency is used by shells that do not set one.
const DefaultFrequency = 8

// Defaults contains scene-wide settings.
type Defaults struct {
	Frequency int `json:"frequency"`
}

// Scene is the top-level data structure produced by evaluation.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Order     []NodeID          `json:"order"` // insertion order
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  Defaults          `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty Scene with default settings.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults:  Defaults{Frequency: DefaultFrequency},
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	if _, ok := s.Nodes[n.ID]; !ok {
		s.Order = append(s.Order, n.ID)
	}
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (s *Scene) AddRoot(id NodeID) {
	s.Roots = append(s.Roots, id)
}

// SetRootsFromOrder makes every node that is not the child of another node a
// root, in insertion order.
func (s *Scene) SetRootsFromOrder() {
	child := make(map[NodeID]bool)
	for _, n := range s.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	s.Roots = s.Roots[:0]
	for _, id := range s.Order {
		if !child[id] {
			s.Roots = append(s.Roots, id)
		}
	}
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Surfaces returns the shell and lens nodes in insertion order.
func (s *Scene) Surfaces() []*Node {
	var out []*Node
	for _, id := range s.Order {
		n := s.Nodes[id]
		if n != nil && (n.Kind == NodeShell || n.Kind == NodeLens) {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}
