package glvisaux

import (
	"github.com/soypat/geometry/ms3"
)

// Mesh is an indexed triangle mesh with per-vertex attributes.
type Mesh struct {
	Positions []ms3.Vec
	Normals   []ms3.Vec
	Colors    [][4]float32
	// Filled holds triangle indices (three per triangle).
	Filled []uint32
	// Outline holds line segment indices (two per edge).
	Outline []uint32
}

// Cube returns a colored cube of side 2 centered at the origin. Each face
// has its own four vertices so normals are flat per face.
func Cube() Mesh {
	v := [8]ms3.Vec{
		{X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: -1},
	}
	n := [6]ms3.Vec{
		{Z: 1}, {X: 1}, {Y: 1},
		{X: -1}, {Y: -1}, {Z: -1},
	}
	c := [8][4]float32{
		{0, 1, 1, 1}, {0, 0, 1, 1}, {0, 0, 0, 1}, {0, 1, 0, 1},
		{1, 1, 0, 1}, {1, 1, 1, 1}, {1, 0, 1, 1}, {1, 0, 0, 1},
	}
	faces := [6][4]int{
		{0, 1, 2, 3},
		{0, 3, 4, 5},
		{0, 5, 6, 1},
		{1, 6, 7, 2},
		{7, 4, 3, 2},
		{4, 7, 6, 5},
	}
	var m Mesh
	for face, idx := range faces {
		base := uint32(len(m.Positions))
		for _, i := range idx {
			m.Positions = append(m.Positions, v[i])
			m.Normals = append(m.Normals, n[face])
			m.Colors = append(m.Colors, c[i])
		}
		m.Filled = append(m.Filled, base, base+1, base+2, base, base+2, base+3)
		m.Outline = append(m.Outline, base, base+1, base+1, base+2, base+2, base+3, base+3, base)
	}
	return m
}
