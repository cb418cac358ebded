// Package structure rasterizes RT Structure contours onto a dose grid.
package structure

import (
	"fmt"

	"medphys/internal/models"
)

// SliceMismatchError is returned when a contour's z position does not map onto
// exactly one dose grid plane.
type SliceMismatchError struct {
	Structure string
	Z         float64
	Matches   int
}

func (e *SliceMismatchError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("structure %q: contour at z=%g has no matching dose grid slice", e.Structure, e.Z)
	}
	return fmt.Sprintf("structure %q: contour at z=%g matches %d dose grid slices", e.Structure, e.Z, e.Matches)
}

// sliceIndex returns the index of the single grid plane at exactly z
func sliceIndex(name string, zAxis []float64, z float64) (int, error) {
	index, matches := -1, 0
	for k, v := range zAxis {
		if v == z {
			index = k
			matches++
		}
	}
	if matches != 1 {
		return 0, &SliceMismatchError{Structure: name, Z: z, Matches: matches}
	}
	return index, nil
}

// BuildMask rasterizes the contours of a structure onto the (x, y) sample
// points of every grid plane they lie on. Contours sharing a slice are OR-ed
// together. Every contour must lie exactly on a grid plane.
func BuildMask(name string, contours []models.Contour, grid *models.DoseGrid) (*models.Mask, error) {
	mask := models.NewMask(len(grid.Y), len(grid.X), len(grid.Z))

	for n, contour := range contours {
		if len(contour.X) != len(contour.Y) {
			return nil, fmt.Errorf("structure %q: contour %d has %d x and %d y vertices",
				name, n, len(contour.X), len(contour.Y))
		}

		k, err := sliceIndex(name, grid.Z, contour.Z)
		if err != nil {
			return nil, err
		}

		polygon := NewPolygon(contour.X, contour.Y)
		for j, y := range grid.Y {
			for i, x := range grid.X {
				if mask.At(j, i, k) {
					continue
				}
				if polygon.Contains(x, y) {
					mask.Set(j, i, k, true)
				}
			}
		}
	}

	return mask, nil
}
