package models

// Contour is a closed polygon drawn on a single axial slice
type Contour struct {
	// Z is the slice position shared by every vertex
	Z float64

	// X and Y are the polygon vertices in order
	X []float64
	Y []float64
}

// Mask is a boolean voxel mask aligned to a DoseGrid.
//
// Data is stored in the same (z, y, x) order as DoseGrid.Dose so that the two
// can be walked together, but At takes its arguments in (y, x, z) order.
type Mask struct {
	Rows   int // len(DoseGrid.Y)
	Cols   int // len(DoseGrid.X)
	Slices int // len(DoseGrid.Z)
	Data   []bool
}

// NewMask allocates an empty mask for a grid of the given shape
func NewMask(rows, cols, slices int) *Mask {
	return &Mask{
		Rows:   rows,
		Cols:   cols,
		Slices: slices,
		Data:   make([]bool, rows*cols*slices),
	}
}

func (m *Mask) index(y, x, z int) int {
	return z*m.Rows*m.Cols + y*m.Cols + x
}

// At reports whether voxel (row y, column x, slice z) is inside the structure
func (m *Mask) At(y, x, z int) bool {
	return m.Data[m.index(y, x, z)]
}

// Set marks voxel (row y, column x, slice z)
func (m *Mask) Set(y, x, z int, v bool) {
	m.Data[m.index(y, x, z)] = v
}

// Count returns the number of voxels inside the mask
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether two masks have the same shape and contents
func (m *Mask) Equal(o *Mask) bool {
	if m.Rows != o.Rows || m.Cols != o.Cols || m.Slices != o.Slices || len(m.Data) != len(o.Data) {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// DVH is a cumulative dose-volume histogram.
//
// Dose holds bin midpoints (Gy) prefixed with 0; Volume holds the percent of
// the structure receiving at least that dose, starting at exactly 100.
type DVH struct {
	Name   string
	Dose   []float64
	Volume []float64
}
