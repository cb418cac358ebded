// Package dose answers spatial queries against an RT Dose grid: point
// interpolation, depth dose curves and lateral profiles.
package dose

import (
	"medphys/internal/models"
	"medphys/pkg/interpolation"
)

// Direction selects the axis a profile is taken along
type Direction string

const (
	Inplane    Direction = "inplane"
	Inline     Direction = "inline"
	Crossplane Direction = "crossplane"
	Crossline  Direction = "crossline"
)

// Directions lists every accepted profile direction
var Directions = []Direction{Inplane, Inline, Crossplane, Crossline}

// ParseDirection validates a direction keyword
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == s {
			return d, nil
		}
	}

	expected := make([]string, len(Directions))
	for i, d := range Directions {
		expected[i] = string(d)
	}
	return "", &InvalidArgumentError{Name: "direction", Value: s, Expected: expected}
}

// Interpolate evaluates the dose grid on the outer product of z, y and x.
// The result is laid out in (z, y, x) order. Queries outside the grid fail
// with an *InterpolationRangeError holding the grid axes.
func Interpolate(grid *models.DoseGrid, z, y, x []float64) ([]float64, error) {
	interp, err := interpolation.NewRegularGrid(grid.Z, grid.Y, grid.X, grid.Dose)
	if err != nil {
		return nil, err
	}
	return interp.Interpolate(z, y, x)
}

// DepthDose interpolates dose along the central axis at the given depths.
// Depth 0 is the phantom surface; depth runs along +y from the surface entry
// point, with x and z held at the entry point.
func DepthDose(depths []float64, grid *models.DoseGrid, plan Plan) ([]float64, error) {
	if err := RequireGantryZero(plan); err != nil {
		return nil, err
	}

	entry, err := ResolveSurfaceEntryPoint(plan)
	if err != nil {
		return nil, err
	}

	y := make([]float64, len(depths))
	for i, d := range depths {
		y[i] = entry.Y + d
	}

	return Interpolate(grid, []float64{entry.Z}, y, []float64{entry.X})
}

// Profile interpolates dose across the beam at a fixed depth. Displacement 0
// is the surface entry point's z (inplane/inline) or x (crossplane/crossline)
// coordinate.
func Profile(displacements []float64, depth float64, direction Direction, grid *models.DoseGrid, plan Plan) ([]float64, error) {
	if err := RequireGantryZero(plan); err != nil {
		return nil, err
	}

	entry, err := ResolveSurfaceEntryPoint(plan)
	if err != nil {
		return nil, err
	}

	y := []float64{entry.Y + depth}

	switch direction {
	case Inplane, Inline:
		z := make([]float64, len(displacements))
		for i, d := range displacements {
			z[i] = entry.Z + d
		}
		return Interpolate(grid, z, y, []float64{entry.X})

	case Crossplane, Crossline:
		x := make([]float64, len(displacements))
		for i, d := range displacements {
			x[i] = entry.X + d
		}
		return Interpolate(grid, []float64{entry.Z}, y, x)

	default:
		_, err := ParseDirection(string(direction))
		return nil, err
	}
}
