// Package kernel defines the mesh type shared by every geometry backend and
// the Kernel interface that backends implement. Implementations (geodesic,
// sdfx) produce closed sphere meshes behind this interface, which lets the
// tessellator and the exporters stay ignorant of how a surface was built.
package kernel

// Kernel is the abstract sphere-meshing backend.
type Kernel interface {
	// Sphere returns a welded, closed triangle mesh approximating a sphere
	// of the given radius centred on the origin. frequency controls the
	// density of the result; its exact meaning is backend specific.
	Sphere(radius float64, frequency int) (*Mesh, error)
}
