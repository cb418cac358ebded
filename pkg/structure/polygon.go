package structure

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is a closed 2D contour on one slice
type Polygon struct {
	ring  orb.Ring
	bound orb.Bound
}

// NewPolygon builds a polygon from matching x and y vertex lists. The last
// vertex connects back to the first.
func NewPolygon(x, y []float64) Polygon {
	ring := make(orb.Ring, 0, len(x)+1)
	for i := range x {
		ring = append(ring, orb.Point{x[i], y[i]})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return Polygon{ring: ring, bound: ring.Bound()}
}

// Contains reports whether (x, y) lies inside the polygon by ray casting.
// Points on the boundary count as inside. Polygons with fewer than three
// distinct vertices contain nothing.
func (p Polygon) Contains(x, y float64) bool {
	if len(p.ring) < 4 {
		return false
	}
	point := orb.Point{x, y}
	if !p.bound.Contains(point) {
		return false
	}
	return planar.RingContains(p.ring, point)
}
