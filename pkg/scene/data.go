package scene

import v3 "github.com/deadsy/sdfx/vec/v3"

// Axis names the direction a shell's pole points along.
type Axis int

const (
	AxisZ Axis = iota // default
	AxisX
)

func (a Axis) String() string {
	switch a {
	case AxisZ:
		return "z"
	case AxisX:
		return "x"
	default:
		return "unknown"
	}
}

// ShellData is a geodesic sphere of the given radius.
type ShellData struct {
	Radius    float64 `json:"radius"`
	Frequency int     `json:"frequency"`
	Pole      Axis    `json:"pole"`
}

func (ShellData) nodeData() {}

// LensData is a lens inclusion: a unit sphere warped to lie between
// BaseRadius-HalfThickness/2 and BaseRadius+HalfThickness/2 within
// HalfAngle radians of the pole.
type LensData struct {
	HalfThickness float64 `json:"half_thickness"`
	BaseRadius    float64 `json:"base_radius"`
	HalfAngle     float64 `json:"half_angle"`
	Frequency     int     `json:"frequency"`
	Pole          Axis    `json:"pole"`
}

func (LensData) nodeData() {}

// Inner and Outer return the radial extent of the lens.
func (d LensData) Inner() float64 { return d.BaseRadius - d.HalfThickness/2 }
func (d LensData) Outer() float64 { return d.BaseRadius + d.HalfThickness/2 }

// TransformData scales, then translates its children.
// Created by the (place ...) form.
type TransformData struct {
	Translation *v3.Vec  `json:"translation,omitempty"`
	Scale       *float64 `json:"scale,omitempty"`
}

func (TransformData) nodeData() {}

// GroupData is a named model. Created by the (model ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
