// Package dvh computes dose-volume histograms for structures on a dose grid.
package dvh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"medphys/internal/models"
	"medphys/pkg/structure"
)

// DefaultBins is the number of equal-width dose bins used when none is given
const DefaultBins = 100

// Summary holds simple dose statistics for a structure
type Summary struct {
	Voxels int
	Min    float64
	Mean   float64
	Max    float64
}

// DoseWithinStructure returns the dose of every voxel inside the mask, walking
// the grid plane by plane.
func DoseWithinStructure(mask *models.Mask, grid *models.DoseGrid) ([]float64, error) {
	nz, ny, nx := grid.Shape()
	if mask.Slices != nz || mask.Rows != ny || mask.Cols != nx {
		return nil, fmt.Errorf("mask shape %dx%dx%d does not match grid %dx%dx%d",
			mask.Rows, mask.Cols, mask.Slices, ny, nx, nz)
	}

	var values []float64
	for k := 0; k < nz; k++ {
		plane, err := grid.Plane("z", k)
		if err != nil {
			return nil, err
		}
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if mask.At(j, i, k) {
					values = append(values, plane[j*nx+i])
				}
			}
		}
	}
	return values, nil
}

// Summarize computes voxel count and min/mean/max dose inside the mask
func Summarize(mask *models.Mask, grid *models.DoseGrid) (Summary, error) {
	values, err := DoseWithinStructure(mask, grid)
	if err != nil {
		return Summary{}, err
	}
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("structure mask is empty")
	}
	return Summary{
		Voxels: len(values),
		Min:    floats.Min(values),
		Mean:   stat.Mean(values, nil),
		Max:    floats.Max(values),
	}, nil
}

// Cumulative rasterizes the named structure onto the grid and returns its
// cumulative DVH.
func Cumulative(name string, contours []models.Contour, grid *models.DoseGrid, bins int) (*models.DVH, error) {
	mask, err := structure.BuildMask(name, contours, grid)
	if err != nil {
		return nil, err
	}
	return FromMask(name, mask, grid, bins)
}

// FromMask bins the dose inside mask into equal-width bins spanning the
// observed dose range and returns the percentage of voxels at or above each
// bin. A (0 Gy, 100%) point is prepended.
//
// Bin edges depend on the observed range, so DVHs of different structures do
// not share a dose axis.
func FromMask(name string, mask *models.Mask, grid *models.DoseGrid, bins int) (*models.DVH, error) {
	if bins <= 0 {
		bins = DefaultBins
	}

	values, err := DoseWithinStructure(mask, grid)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("structure %q does not cover any dose grid voxel", name)
	}

	edges := binEdges(values, bins)
	counts := histogram(values, edges)

	dose := make([]float64, bins+1)
	cumulative := make([]float64, bins+1)
	running := 0.0
	for i := bins - 1; i >= 0; i-- {
		running += counts[i]
		cumulative[i+1] = running
		dose[i+1] = (edges[i] + edges[i+1]) / 2
	}
	cumulative[0] = cumulative[1]

	total := cumulative[0]
	volume := make([]float64, len(cumulative))
	for i, c := range cumulative {
		volume[i] = c / total * 100
	}

	return &models.DVH{Name: name, Dose: dose, Volume: volume}, nil
}

// binEdges returns bins+1 evenly spaced edges over the range of values. A
// zero-width range is widened by 0.5 on each side.
func binEdges(values []float64, bins int) []float64 {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// Span can round the last edge below hi
	edges[bins] = hi
	return edges
}

// histogram counts values per bin. The last bin is closed so the maximum
// value is counted.
func histogram(values, edges []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	last := len(dividers) - 1
	dividers[last] = math.Nextafter(dividers[last], math.Inf(1))

	return stat.Histogram(nil, dividers, sorted, nil)
}
