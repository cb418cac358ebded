package models

import (
	"fmt"
)

// Point3D is a physical coordinate in the patient (DICOM) frame, in mm
type Point3D struct {
	X, Y, Z float64
}

// DoseGrid is a 3D dose distribution sampled on a rectilinear lattice.
type DoseGrid struct {
	// Z, Y and X are the physical coordinates of the grid planes, rows and
	// columns. Each axis is strictly monotonic but may be decreasing.
	Z []float64
	Y []float64
	X []float64

	// Dose holds the scaled dose values (Gy) as a 1D array in (z, y, x)
	// order: index = k*len(Y)*len(X) + j*len(X) + i
	Dose []float64
}

// Shape returns the number of samples along z, y and x
func (g *DoseGrid) Shape() (nz, ny, nx int) {
	return len(g.Z), len(g.Y), len(g.X)
}

// Index converts a (plane, row, column) triple into an offset into Dose
func (g *DoseGrid) Index(k, j, i int) int {
	return k*len(g.Y)*len(g.X) + j*len(g.X) + i
}

// At returns the dose stored at plane k, row j, column i
func (g *DoseGrid) At(k, j, i int) float64 {
	return g.Dose[g.Index(k, j, i)]
}

// Validate checks that the dose array matches the axes, that every axis is
// strictly monotonic and that no dose value is negative.
func (g *DoseGrid) Validate() error {
	nz, ny, nx := g.Shape()
	if nz == 0 || ny == 0 || nx == 0 {
		return fmt.Errorf("dose grid has an empty axis (z=%d, y=%d, x=%d)", nz, ny, nx)
	}
	if len(g.Dose) != nz*ny*nx {
		return fmt.Errorf("dose array has %d values, axes describe %dx%dx%d", len(g.Dose), nz, ny, nx)
	}
	for name, axis := range map[string][]float64{"z": g.Z, "y": g.Y, "x": g.X} {
		if !StrictlyMonotonic(axis) {
			return fmt.Errorf("%s axis is not strictly monotonic", name)
		}
	}
	for idx, v := range g.Dose {
		if v < 0 {
			return fmt.Errorf("negative dose %g at offset %d", v, idx)
		}
	}
	return nil
}

// Plane extracts a 2D plane of dose values along the given axis.
//
// For axis "z" the result is row-major (y, x); for "y" it is (z, x); for "x"
// it is (z, y).
func (g *DoseGrid) Plane(axis string, position int) ([]float64, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	nz, ny, nx := g.Shape()

	switch axis {
	case "z", "Z":
		if position >= nz {
			return nil, fmt.Errorf("position %d exceeds z size %d", position, nz)
		}
		start := g.Index(position, 0, 0)
		plane := make([]float64, ny*nx)
		copy(plane, g.Dose[start:start+ny*nx])
		return plane, nil

	case "y", "Y":
		if position >= ny {
			return nil, fmt.Errorf("position %d exceeds y size %d", position, ny)
		}
		plane := make([]float64, nz*nx)
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				plane[k*nx+i] = g.At(k, position, i)
			}
		}
		return plane, nil

	case "x", "X":
		if position >= nx {
			return nil, fmt.Errorf("position %d exceeds x size %d", position, nx)
		}
		plane := make([]float64, nz*ny)
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				plane[k*ny+j] = g.At(k, j, position)
			}
		}
		return plane, nil

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
}

// StrictlyMonotonic reports whether values are strictly increasing or
// strictly decreasing. A single value counts as monotonic.
func StrictlyMonotonic(values []float64) bool {
	if len(values) < 2 {
		return len(values) == 1
	}
	increasing := values[1] > values[0]
	for i := 1; i < len(values); i++ {
		if increasing && !(values[i] > values[i-1]) {
			return false
		}
		if !increasing && !(values[i] < values[i-1]) {
			return false
		}
	}
	return true
}
