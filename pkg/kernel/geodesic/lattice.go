package geodesic

import "fmt"

// Label identifies a lattice point of a face-patch by row and column,
// with 0 <= Col <= Row <= frequency.
type Label struct {
	Row int
	Col int
}

// RawPoint is the linear, unprojected coordinate of a lattice point.
type RawPoint struct {
	X, Y, Z float64
}

// labelIndex returns the position of (row, col) in lattice order.
func labelIndex(row, col int) int {
	return row*(row+1)/2 + col
}

// Lattice enumerates the labels of a face-patch row by row and returns them
// together with their raw coordinates (col, row-col, frequency-row).
func Lattice(frequency int) ([]Label, []RawPoint, error) {
	counts, err := Topology(frequency)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", methodLattice, err)
	}
	labels := make([]Label, 0, counts.Vertices)
	points := make([]RawPoint, 0, counts.Vertices)
	for row := 0; row <= frequency; row++ {
		for col := 0; col <= row; col++ {
			labels = append(labels, Label{Row: row, Col: col})
			points = append(points, RawPoint{
				X: float64(col),
				Y: float64(row - col),
				Z: float64(frequency - row),
			})
		}
	}
	return labels, points, nil
}
