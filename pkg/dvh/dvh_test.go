package dvh

import (
	"math"
	"testing"

	"medphys/internal/models"
)

// rampGrid returns a 1-slice grid where dose increases with x
func rampGrid(nx, ny int) *models.DoseGrid {
	g := &models.DoseGrid{Z: []float64{0}}
	for j := 0; j < ny; j++ {
		g.Y = append(g.Y, float64(j))
	}
	for i := 0; i < nx; i++ {
		g.X = append(g.X, float64(i))
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			g.Dose = append(g.Dose, float64(i)*0.5)
		}
	}
	return g
}

func box(x0, y0, x1, y1 float64) []models.Contour {
	return []models.Contour{{
		Z: 0,
		X: []float64{x0, x1, x1, x0},
		Y: []float64{y0, y0, y1, y1},
	}}
}

func TestCumulative(t *testing.T) {
	grid := rampGrid(20, 10)
	contours := box(1.5, 1.5, 12.5, 6.5) // x 2..12, y 2..6

	dvh, err := Cumulative("PTV", contours, grid, 0)
	if err != nil {
		t.Fatalf("Cumulative failed: %v", err)
	}

	if dvh.Name != "PTV" {
		t.Errorf("Expected name PTV, got %s", dvh.Name)
	}
	if len(dvh.Dose) != DefaultBins+1 || len(dvh.Volume) != DefaultBins+1 {
		t.Fatalf("Expected %d points, got %d doses and %d volumes", DefaultBins+1, len(dvh.Dose), len(dvh.Volume))
	}
	if dvh.Dose[0] != 0 {
		t.Errorf("Expected first dose 0, got %v", dvh.Dose[0])
	}
	if dvh.Volume[0] != 100.0 {
		t.Errorf("Expected first volume exactly 100, got %v", dvh.Volume[0])
	}
	if dvh.Volume[1] != 100.0 {
		t.Errorf("Expected lowest bin to hold every voxel, got %v", dvh.Volume[1])
	}

	for i := 1; i < len(dvh.Volume); i++ {
		if dvh.Volume[i] > dvh.Volume[i-1] {
			t.Errorf("Volume increases at %d: %v > %v", i, dvh.Volume[i], dvh.Volume[i-1])
		}
	}

	// 11 columns x 5 rows, the top column (dose 6 Gy) is 1/11 of the volume
	last := dvh.Volume[len(dvh.Volume)-1]
	if math.Abs(last-100.0/11) > 1e-9 {
		t.Errorf("Expected last bin %v%%, got %v", 100.0/11, last)
	}

	// bins span [1, 6] Gy
	width := 5.0 / DefaultBins
	if math.Abs(dvh.Dose[1]-(1+width/2)) > 1e-9 {
		t.Errorf("Expected first midpoint %v, got %v", 1+width/2, dvh.Dose[1])
	}
}

func TestCumulativeConstantDose(t *testing.T) {
	grid := rampGrid(5, 5)
	for i := range grid.Dose {
		grid.Dose[i] = 2
	}

	dvh, err := Cumulative("Bladder", box(0.5, 0.5, 3.5, 3.5), grid, 10)
	if err != nil {
		t.Fatalf("Cumulative failed: %v", err)
	}
	if len(dvh.Dose) != 11 {
		t.Fatalf("Expected 11 points, got %d", len(dvh.Dose))
	}
	if dvh.Volume[0] != 100 {
		t.Errorf("Expected first volume 100, got %v", dvh.Volume[0])
	}
	for i := 1; i < len(dvh.Volume); i++ {
		if dvh.Volume[i] > dvh.Volume[i-1] {
			t.Errorf("Volume increases at %d", i)
		}
	}
}

func TestCumulativeEmptyMask(t *testing.T) {
	grid := rampGrid(5, 5)
	if _, err := Cumulative("Empty", box(10, 10, 12, 12), grid, 0); err == nil {
		t.Error("Expected error for a structure covering no voxels, got nil")
	}
}

func TestSummarize(t *testing.T) {
	grid := rampGrid(10, 4)
	mask := models.NewMask(4, 10, 1)
	mask.Set(0, 2, 0, true)
	mask.Set(1, 4, 0, true)
	mask.Set(3, 6, 0, true)

	s, err := Summarize(mask, grid)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Voxels != 3 || s.Min != 1 || s.Max != 3 || math.Abs(s.Mean-2) > 1e-12 {
		t.Errorf("Unexpected summary: %+v", s)
	}

	if _, err := Summarize(models.NewMask(1, 1, 1), grid); err == nil {
		t.Error("Expected shape mismatch error, got nil")
	}
}

func TestFromMaskUnalignedRange(t *testing.T) {
	ranges := [][2]float64{{0.66, 16.31}, {6.49, 61.67}, {7.53, 22.63}}

	for _, r := range ranges {
		grid := &models.DoseGrid{
			Z:    []float64{0},
			Y:    []float64{0},
			X:    []float64{0, 1},
			Dose: []float64{r[0], r[1]},
		}
		mask := models.NewMask(1, 2, 1)
		mask.Set(0, 0, 0, true)
		mask.Set(0, 1, 0, true)

		dvh, err := FromMask("PTV", mask, grid, DefaultBins)
		if err != nil {
			t.Fatalf("FromMask(%v) failed: %v", r, err)
		}
		if dvh.Volume[0] != 100 || dvh.Volume[1] != 100 {
			t.Errorf("Range %v: expected curve to start at 100, got %v %v", r, dvh.Volume[0], dvh.Volume[1])
		}
		if last := dvh.Volume[len(dvh.Volume)-1]; last != 50 {
			t.Errorf("Range %v: expected maximum dose in last bin (50%%), got %v", r, last)
		}

		edges := binEdges(grid.Dose, DefaultBins)
		if edges[DefaultBins] != r[1] {
			t.Errorf("Range %v: expected last edge %v, got %v", r, r[1], edges[DefaultBins])
		}
	}
}
