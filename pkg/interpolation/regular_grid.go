// Package interpolation provides linear interpolation over 3D rectilinear
// grids such as RT Dose distributions.
package interpolation

import (
	"fmt"
	"math"
	"sort"
)

// RangeError is returned when a query coordinate falls outside the grid.
// It carries the grid axes so callers can see what the grid actually spans.
type RangeError struct {
	Axis  string
	Value float64

	Z, Y, X []float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("interpolation: %s=%g is outside the grid; axes z=%v y=%v x=%v",
		e.Axis, e.Value, e.Z, e.Y, e.X)
}

// axis is one strictly monotonic coordinate vector of the grid
type axis struct {
	name       string
	coords     []float64
	descending bool
}

func newAxis(name string, coords []float64) (axis, error) {
	a := axis{name: name, coords: coords}
	if len(coords) == 0 {
		return a, fmt.Errorf("%s axis is empty", name)
	}
	if len(coords) > 1 {
		a.descending = coords[1] < coords[0]
	}
	for i := 1; i < len(coords); i++ {
		if a.descending && !(coords[i] < coords[i-1]) || !a.descending && !(coords[i] > coords[i-1]) {
			return a, fmt.Errorf("%s axis is not strictly monotonic at index %d", name, i)
		}
	}
	return a, nil
}

func (a axis) bounds() (lo, hi float64) {
	lo, hi = a.coords[0], a.coords[len(a.coords)-1]
	if a.descending {
		lo, hi = hi, lo
	}
	return lo, hi
}

// locate finds the cell holding v. It returns the lower node index and the
// fractional distance t in [0, 1) towards the next node. An exact hit on a
// node always returns t == 0.
func (a axis) locate(v float64) (int, float64, bool) {
	lo, hi := a.bounds()
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, 0, false
	}

	c := a.coords
	var i int
	if a.descending {
		i = sort.Search(len(c), func(k int) bool { return c[k] <= v })
	} else {
		i = sort.Search(len(c), func(k int) bool { return c[k] >= v })
	}

	if c[i] == v {
		return i, 0, true
	}
	i0 := i - 1
	return i0, (v - c[i0]) / (c[i] - c[i0]), true
}

// RegularGrid interpolates values sampled on a rectilinear (z, y, x) grid.
type RegularGrid struct {
	z, y, x axis

	// values in (z, y, x) order
	values []float64
}

// NewRegularGrid creates an interpolator for values laid out in (z, y, x)
// order over the given axes. The axes and values are not copied.
func NewRegularGrid(z, y, x, values []float64) (*RegularGrid, error) {
	az, err := newAxis("z", z)
	if err != nil {
		return nil, err
	}
	ay, err := newAxis("y", y)
	if err != nil {
		return nil, err
	}
	ax, err := newAxis("x", x)
	if err != nil {
		return nil, err
	}

	if want := len(z) * len(y) * len(x); len(values) != want {
		return nil, fmt.Errorf("got %d values for a %dx%dx%d grid", len(values), len(z), len(y), len(x))
	}

	return &RegularGrid{z: az, y: ay, x: ax, values: values}, nil
}

func (g *RegularGrid) rangeError(a axis, v float64) *RangeError {
	return &RangeError{
		Axis:  a.name,
		Value: v,
		Z:     g.z.coords,
		Y:     g.y.coords,
		X:     g.x.coords,
	}
}

// Interpolate evaluates the grid on the outer product of the query axes.
//
// zq varies along the first result dimension, yq along the second and xq along
// the third, so the result has len(zq)*len(yq)*len(xq) values in (z, y, x)
// order. It is not a list of zipped points.
func (g *RegularGrid) Interpolate(zq, yq, xq []float64) ([]float64, error) {
	type cell struct {
		i int
		t float64
	}

	locateAll := func(a axis, q []float64) ([]cell, error) {
		cells := make([]cell, len(q))
		for n, v := range q {
			i, t, ok := a.locate(v)
			if !ok {
				return nil, g.rangeError(a, v)
			}
			cells[n] = cell{i, t}
		}
		return cells, nil
	}

	zc, err := locateAll(g.z, zq)
	if err != nil {
		return nil, err
	}
	yc, err := locateAll(g.y, yq)
	if err != nil {
		return nil, err
	}
	xc, err := locateAll(g.x, xq)
	if err != nil {
		return nil, err
	}

	result := make([]float64, 0, len(zq)*len(yq)*len(xq))
	for _, cz := range zc {
		for _, cy := range yc {
			for _, cx := range xc {
				result = append(result, g.trilinear(cz.i, cz.t, cy.i, cy.t, cx.i, cx.t))
			}
		}
	}

	return result, nil
}

// At interpolates a single point
func (g *RegularGrid) At(z, y, x float64) (float64, error) {
	v, err := g.Interpolate([]float64{z}, []float64{y}, []float64{x})
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (g *RegularGrid) trilinear(k int, tz float64, j int, ty float64, i int, tx float64) float64 {
	ny, nx := len(g.y.coords), len(g.x.coords)

	sum := 0.0
	for dk := 0; dk < 2; dk++ {
		wz := weight(tz, dk)
		if wz == 0 {
			continue
		}
		for dj := 0; dj < 2; dj++ {
			wy := weight(ty, dj)
			if wy == 0 {
				continue
			}
			for di := 0; di < 2; di++ {
				wx := weight(tx, di)
				if wx == 0 {
					continue
				}
				idx := (k+dk)*ny*nx + (j+dj)*nx + (i + di)
				sum += wz * wy * wx * g.values[idx]
			}
		}
	}
	return sum
}

// weight is the linear weight of the lower (d == 0) or upper (d == 1) node
func weight(t float64, d int) float64 {
	if d == 0 {
		return 1 - t
	}
	return t
}
