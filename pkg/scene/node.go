package scene

import "github.com/google/uuid"

// NodeID is a deterministic identifier derived from a node's path in the
// script (for example "shell/brain").
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// idSpace namespaces scene ids so that equal paths always map to equal ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("geoshell/scene"))

// NewNodeID returns the id for a node path.
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idSpace, []byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first 8 hex digits, enough to tell nodes apart in logs.
func (id NodeID) Short() string {
	return id.String()[:8]
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText encodes the id in its canonical form.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText decodes a canonical id.
func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NodeKind enumerates the types of scene nodes.
type NodeKind int

const (
	NodeShell     NodeKind = iota // geodesic sphere
	NodeLens                      // lens-shaped inclusion
	NodeTransform                 // placement (place)
	NodeGroup                     // named model (model)
)

func (k NodeKind) String() string {
	switch k {
	case NodeShell:
		return "shell"
	case NodeLens:
		return "lens"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the scene.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData()
}

// DisplayName is the node's name, or its short id when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
