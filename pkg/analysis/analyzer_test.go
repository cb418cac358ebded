package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"medphys/internal/models"
	"medphys/pkg/dose"
)

type fakePlan struct {
	angles []float64
	entry  models.Point3D
}

func (p *fakePlan) GantryAngles() ([]float64, error) { return p.angles, nil }
func (p *fakePlan) SurfaceEntryPoint() (models.Point3D, bool, error) {
	return p.entry, true, nil
}
func (p *fakePlan) SourceAxisDistance() (float64, error)      { return 1000, nil }
func (p *fakePlan) SourceToSurfaceDistance() (float64, error) { return 1000, nil }
func (p *fakePlan) IsocenterPosition() (models.Point3D, error) { return p.entry, nil }

// testGrid holds dose 10 + x + y on two slices of an 11x11 unit grid
func testGrid() *models.DoseGrid {
	g := &models.DoseGrid{Z: []float64{0, 1}}
	for v := 0; v <= 10; v++ {
		g.Y = append(g.Y, float64(v))
		g.X = append(g.X, float64(v))
	}
	for range g.Z {
		for _, y := range g.Y {
			for _, x := range g.X {
				g.Dose = append(g.Dose, 10+x+y)
			}
		}
	}
	return g
}

func newTestAnalyzer(params *Params, plan dose.Plan) *Analyzer {
	a, _ := newLoggedTestAnalyzer(params, plan)
	return a
}

func newLoggedTestAnalyzer(params *Params, plan dose.Plan) (*Analyzer, *test.Hook) {
	logger, hook := test.NewNullLogger()
	a := NewAnalyzer(params, logger)
	a.loadDose = func(string) (*models.DoseGrid, error) { return testGrid(), nil }
	a.loadPlan = func(string) (dose.Plan, error) { return plan, nil }
	a.loadStructures = func(_ string, names []string) (map[string][]models.Contour, error) {
		out := make(map[string][]models.Contour)
		for _, name := range names {
			out[name] = []models.Contour{{
				Z: 0,
				X: []float64{1.5, 3.5, 3.5, 1.5},
				Y: []float64{1.5, 1.5, 3.5, 3.5},
			}}
		}
		return out, nil
	}
	return a, hook
}

func assertClose(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d values, got %d", name, len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d]: expected %v, got %v", name, i, want[i], got[i])
		}
	}
}

func TestProcess(t *testing.T) {
	params := &Params{
		DosePath:      "dose.dcm",
		PlanPath:      "plan.dcm",
		StructPath:    "struct.dcm",
		Structures:    []string{"PTV"},
		Depths:        []float64{0, 2.5},
		Displacements: []float64{-2, 0, 2},
		ProfileDepth:  4,
		Direction:     "crossplane",
	}
	plan := &fakePlan{angles: []float64{0}, entry: models.Point3D{X: 5, Y: 0, Z: 0}}

	report, err := newTestAnalyzer(params, plan).Process()
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	assertClose(t, "depth dose", report.DepthDose, []float64{15, 17.5})
	assertClose(t, "profile", report.Profile, []float64{17, 19, 21})
	if report.Direction != dose.Crossplane {
		t.Errorf("Expected crossplane, got %s", report.Direction)
	}

	if len(report.Structures) != 1 {
		t.Fatalf("Expected 1 structure result, got %d", len(report.Structures))
	}
	result := report.Structures[0]
	if result.Summary.Voxels != 4 || result.Summary.Min != 14 || result.Summary.Max != 16 {
		t.Errorf("Unexpected summary: %+v", result.Summary)
	}
	if math.Abs(result.Summary.Mean-15) > 1e-9 {
		t.Errorf("Expected mean 15, got %v", result.Summary.Mean)
	}
	if result.DVH.Name != "PTV" || result.DVH.Volume[0] != 100 {
		t.Errorf("Unexpected DVH start: %s %v", result.DVH.Name, result.DVH.Volume[0])
	}
}

func TestProcessRejectsRotatedGantry(t *testing.T) {
	params := &Params{DosePath: "dose.dcm", PlanPath: "plan.dcm", Depths: []float64{1}}
	plan := &fakePlan{angles: []float64{0, 90}}

	_, err := newTestAnalyzer(params, plan).Process()
	var geometryErr *dose.UnsupportedGeometryError
	if !errors.As(err, &geometryErr) {
		t.Fatalf("Expected UnsupportedGeometryError, got %v", err)
	}
}

func TestProcessInvalidDirection(t *testing.T) {
	params := &Params{
		DosePath:      "dose.dcm",
		PlanPath:      "plan.dcm",
		Displacements: []float64{0},
		Direction:     "diagonal",
	}

	a := newTestAnalyzer(params, &fakePlan{angles: []float64{0}})
	loaded := false
	a.loadDose = func(string) (*models.DoseGrid, error) {
		loaded = true
		return testGrid(), nil
	}

	_, err := a.Process()
	var argErr *dose.InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("Expected InvalidArgumentError, got %v", err)
	}
	if loaded {
		t.Error("Expected direction to be checked before loading files")
	}
}

func TestProcessMissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"no dose", Params{Depths: []float64{1}}},
		{"nothing requested", Params{DosePath: "dose.dcm"}},
		{"no plan", Params{DosePath: "dose.dcm", Depths: []float64{1}}},
		{"no structure set", Params{DosePath: "dose.dcm", Structures: []string{"PTV"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params
			if _, err := newTestAnalyzer(&params, &fakePlan{angles: []float64{0}}).Process(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestProcessOutsideGridLogsAxes(t *testing.T) {
	params := &Params{DosePath: "dose.dcm", PlanPath: "plan.dcm", Depths: []float64{0, 25}}
	plan := &fakePlan{angles: []float64{0}, entry: models.Point3D{X: 5, Y: 0, Z: 0}}

	a, hook := newLoggedTestAnalyzer(params, plan)
	_, err := a.Process()

	var rangeErr *dose.InterpolationRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected InterpolationRangeError, got %v", err)
	}
	if rangeErr.Axis != "y" || rangeErr.Value != 25 {
		t.Errorf("Unexpected range error: %v", rangeErr)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("Expected an error entry, got %v", entry)
	}
	if y, ok := entry.Data["y"].([]float64); !ok || len(y) != 11 {
		t.Errorf("Expected the y axis in the log entry, got %v", entry.Data["y"])
	}
}
