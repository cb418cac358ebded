package interpolation

import (
	"errors"
	"math"
	"testing"
)

// linearField returns values of f(z, y, x) = 100z + 10y + x, which trilinear
// interpolation reproduces exactly anywhere inside the grid.
func linearField(z, y, x []float64) []float64 {
	values := make([]float64, 0, len(z)*len(y)*len(x))
	for _, zv := range z {
		for _, yv := range y {
			for _, xv := range x {
				values = append(values, 100*zv+10*yv+xv)
			}
		}
	}
	return values
}

func TestNewRegularGrid(t *testing.T) {
	z := []float64{0, 1}
	y := []float64{0, 1, 2}
	x := []float64{0, 1, 2, 3}

	if _, err := NewRegularGrid(z, y, x, make([]float64, 24)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := NewRegularGrid(z, y, x, make([]float64, 23)); err == nil {
		t.Error("Expected error for mismatched value count, got nil")
	}

	if _, err := NewRegularGrid(z, []float64{0, 1, 1}, x, make([]float64, 24)); err == nil {
		t.Error("Expected error for non-monotonic axis, got nil")
	}

	if _, err := NewRegularGrid(nil, y, x, nil); err == nil {
		t.Error("Expected error for empty axis, got nil")
	}
}

func TestInterpolateAtNodes(t *testing.T) {
	z := []float64{-10, -7.5, -5}
	y := []float64{20, 22, 24, 26}
	x := []float64{3, 1, -1} // descending axes are allowed
	values := make([]float64, len(z)*len(y)*len(x))
	for i := range values {
		values[i] = math.Sqrt(float64(i)) * 1.37
	}

	grid, err := NewRegularGrid(z, y, x, values)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	for k, zv := range z {
		for j, yv := range y {
			for i, xv := range x {
				got, err := grid.At(zv, yv, xv)
				if err != nil {
					t.Fatalf("At(%g, %g, %g) failed: %v", zv, yv, xv, err)
				}
				want := values[k*len(y)*len(x)+j*len(x)+i]
				if got != want {
					t.Errorf("At node (%d, %d, %d): expected %v, got %v", k, j, i, want, got)
				}
			}
		}
	}
}

func TestInterpolateLinearField(t *testing.T) {
	z := []float64{0, 2, 4}
	y := []float64{10, 5, 0}
	x := []float64{-2, 0, 2, 4}
	grid, err := NewRegularGrid(z, y, x, linearField(z, y, x))
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	tests := []struct {
		z, y, x float64
	}{
		{1, 2.5, 0.5},
		{3.9, 9.1, -1.7},
		{0, 0, 4},
		{4, 10, -2},
	}

	for _, tc := range tests {
		got, err := grid.At(tc.z, tc.y, tc.x)
		if err != nil {
			t.Fatalf("At(%g, %g, %g) failed: %v", tc.z, tc.y, tc.x, err)
		}
		want := 100*tc.z + 10*tc.y + tc.x
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("At(%g, %g, %g): expected %v, got %v", tc.z, tc.y, tc.x, want, got)
		}
	}
}

func TestInterpolateOuterProduct(t *testing.T) {
	z := []float64{0, 1, 2}
	y := []float64{0, 1, 2}
	x := []float64{0, 1, 2}
	grid, err := NewRegularGrid(z, y, x, linearField(z, y, x))
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	zq := []float64{0.5, 1.5}
	yq := []float64{0, 1, 2}
	xq := []float64{0.25, 0.5, 1, 2}

	result, err := grid.Interpolate(zq, yq, xq)
	if err != nil {
		t.Fatalf("Interpolate failed: %v", err)
	}

	if len(result) != len(zq)*len(yq)*len(xq) {
		t.Fatalf("Expected %d values, got %d", len(zq)*len(yq)*len(xq), len(result))
	}

	for k, zv := range zq {
		for j, yv := range yq {
			for i, xv := range xq {
				got := result[k*len(yq)*len(xq)+j*len(xq)+i]
				want := 100*zv + 10*yv + xv
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("Result at (%d, %d, %d): expected %v, got %v", k, j, i, want, got)
				}
			}
		}
	}
}

func TestInterpolateOutOfRange(t *testing.T) {
	z := []float64{0, 1}
	y := []float64{0, 1}
	x := []float64{0, 1}
	grid, err := NewRegularGrid(z, y, x, make([]float64, 8))
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	_, err = grid.Interpolate([]float64{0.5}, []float64{1.01}, []float64{0.5})
	if err == nil {
		t.Fatal("Expected range error, got nil")
	}

	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected *RangeError, got %T", err)
	}
	if rangeErr.Axis != "y" {
		t.Errorf("Expected offending axis y, got %s", rangeErr.Axis)
	}
	if len(rangeErr.Z) != 2 || len(rangeErr.Y) != 2 || len(rangeErr.X) != 2 {
		t.Errorf("Expected the error to carry the grid axes, got z=%v y=%v x=%v",
			rangeErr.Z, rangeErr.Y, rangeErr.X)
	}

	if _, err := grid.At(math.NaN(), 0, 0); err == nil {
		t.Error("Expected range error for NaN, got nil")
	}
}
