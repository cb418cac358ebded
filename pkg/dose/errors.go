package dose

import (
	"fmt"
	"strings"

	"medphys/pkg/interpolation"
)

// InterpolationRangeError is returned when a query point lies outside the
// dose grid. It carries the grid axes.
type InterpolationRangeError = interpolation.RangeError

// UnsupportedGeometryError is returned when the beam geometry does not allow
// depth and displacement to be mapped onto grid coordinates.
type UnsupportedGeometryError struct {
	Reason string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("unsupported beam geometry: %s", e.Reason)
}

// InvalidArgumentError is returned for argument values outside an accepted set
type InvalidArgumentError struct {
	Name     string
	Value    string
	Expected []string
}

func (e *InvalidArgumentError) Error() string {
	quoted := make([]string, len(e.Expected))
	for i, v := range e.Expected {
		quoted[i] = "'" + v + "'"
	}
	return fmt.Sprintf("invalid %s %q: expected %s to be equal to one of %s",
		e.Name, e.Value, e.Name, strings.Join(quoted, ", "))
}
