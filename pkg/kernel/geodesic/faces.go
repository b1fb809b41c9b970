package geodesic

// Triangle is a triple of 0-based indices into a patch's point slice.
type Triangle [3]int

// upward is the triangle rooted at (row, col) pointing away from the apex.
func upward(row, col int) Triangle {
	return Triangle{
		labelIndex(row, col),
		labelIndex(row+1, col),
		labelIndex(row+1, col+1),
	}
}

// downward is the triangle rooted at (row, col) filling the gap between two
// neighbouring upward triangles.
func downward(row, col int) Triangle {
	return Triangle{
		labelIndex(row, col),
		labelIndex(row+1, col+1),
		labelIndex(row, col+1),
	}
}

// PatchTriangles builds the triangles of a patch from its labels. Every
// label outside the last row roots an upward triangle; all but the last
// label of each row also root a downward one. The result has frequency²
// triangles.
func PatchTriangles(labels []Label, frequency int) []Triangle {
	tris := make([]Triangle, 0, frequency*frequency)
	for _, l := range labels {
		if l.Row >= frequency {
			break
		}
		tris = append(tris, upward(l.Row, l.Col))
		if l.Col < l.Row {
			tris = append(tris, downward(l.Row, l.Col))
		}
	}
	return tris
}
