// Package analysis runs the dose analyses of a treatment plan: depth dose,
// lateral profile and dose-volume histograms, loading the RT Dose, RT Plan
// and RT Structure Set files it needs.
package analysis

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"medphys/internal/logging"
	"medphys/internal/models"
	"medphys/pkg/dicomio"
	"medphys/pkg/dose"
	"medphys/pkg/dvh"
	"medphys/pkg/structure"
)

// Params holds the input files and the queries to run.
type Params struct {
	// DosePath is the RT Dose file. Always required.
	DosePath string

	// PlanPath is the RT Plan file. Required for depth dose and profiles.
	PlanPath string

	// StructPath is the RT Structure Set file. Required for DVHs.
	StructPath string

	// Structures are the ROI names to compute DVHs for
	Structures []string

	// Depths in mm below the surface for the depth dose curve
	Depths []float64

	// Displacements in mm from the beam axis for the profile, taken at
	// ProfileDepth along Direction
	Displacements []float64
	ProfileDepth  float64
	Direction     string

	// Bins is the number of DVH bins; zero means dvh.DefaultBins
	Bins int
}

// StructureResult is the DVH and dose summary of one structure
type StructureResult struct {
	DVH     *models.DVH
	Summary dvh.Summary
}

// Report holds the results of an analysis. Slices are empty for analyses
// that were not requested.
type Report struct {
	Depths        []float64
	DepthDose     []float64
	Displacements []float64
	Profile       []float64
	Direction     dose.Direction
	Structures    []StructureResult
}

// Analyzer runs the analyses described by its Params
type Analyzer struct {
	params *Params
	logger logrus.FieldLogger

	loadDose       func(path string) (*models.DoseGrid, error)
	loadPlan       func(path string) (dose.Plan, error)
	loadStructures func(path string, names []string) (map[string][]models.Contour, error)
}

// NewAnalyzer creates an analyzer reading DICOM files from disk. A nil
// logger is replaced by an info-level logger on stdout.
func NewAnalyzer(params *Params, logger logrus.FieldLogger) *Analyzer {
	if logger == nil {
		logger = logging.NewLogger("info")
	}
	return &Analyzer{
		params:   params,
		logger:   logger,
		loadDose: dicomio.LoadDoseGrid,
		loadPlan: func(path string) (dose.Plan, error) {
			return dicomio.LoadRTPlan(path)
		},
		loadStructures: dicomio.LoadStructures,
	}
}

// Process loads the input files and runs every requested analysis in turn.
// The first failure aborts the run.
func (a *Analyzer) Process() (*Report, error) {
	p := a.params
	if p.DosePath == "" {
		return nil, fmt.Errorf("no RT Dose file given")
	}

	wantDepth := len(p.Depths) > 0
	wantProfile := len(p.Displacements) > 0
	wantDVH := len(p.Structures) > 0
	if !wantDepth && !wantProfile && !wantDVH {
		return nil, fmt.Errorf("nothing to analyse: give depths, displacements or structures")
	}

	report := &Report{}

	// Validate the direction before reading any file
	if wantProfile {
		direction, err := dose.ParseDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		report.Direction = direction
	}

	a.logger.Infof("Step 1: Loading dose grid from %s", p.DosePath)
	grid, err := a.loadDose(p.DosePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dose: %w", err)
	}

	if wantDepth || wantProfile {
		if p.PlanPath == "" {
			return nil, fmt.Errorf("depth dose and profiles need an RT Plan file")
		}

		a.logger.Infof("Step 2: Loading plan from %s", p.PlanPath)
		plan, err := a.loadPlan(p.PlanPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan: %w", err)
		}

		if wantDepth {
			a.logger.Info("Step 3: Computing depth dose")
			if report.DepthDose, err = dose.DepthDose(p.Depths, grid, plan); err != nil {
				a.logRangeError(err)
				return nil, fmt.Errorf("failed to compute depth dose: %w", err)
			}
			report.Depths = p.Depths
		}

		if wantProfile {
			a.logger.WithField("direction", report.Direction).Infof("Step 4: Computing profile at depth %g", p.ProfileDepth)
			if report.Profile, err = dose.Profile(p.Displacements, p.ProfileDepth, report.Direction, grid, plan); err != nil {
				a.logRangeError(err)
				return nil, fmt.Errorf("failed to compute profile: %w", err)
			}
			report.Displacements = p.Displacements
		}
	}

	if wantDVH {
		if p.StructPath == "" {
			return nil, fmt.Errorf("DVHs need an RT Structure Set file")
		}

		a.logger.Infof("Step 5: Loading structures from %s", p.StructPath)
		contours, err := a.loadStructures(p.StructPath, p.Structures)
		if err != nil {
			return nil, fmt.Errorf("failed to load structures: %w", err)
		}

		for _, name := range p.Structures {
			result, err := a.structureResult(name, contours[name], grid)
			if err != nil {
				return nil, fmt.Errorf("failed to compute DVH of %s: %w", name, err)
			}
			report.Structures = append(report.Structures, result)
		}
	}

	return report, nil
}

// logRangeError records the grid axes when a query fell outside the grid
func (a *Analyzer) logRangeError(err error) {
	var rangeErr *dose.InterpolationRangeError
	if !errors.As(err, &rangeErr) {
		return
	}
	a.logger.WithFields(logrus.Fields{
		"axis":  rangeErr.Axis,
		"value": rangeErr.Value,
		"z":     rangeErr.Z,
		"y":     rangeErr.Y,
		"x":     rangeErr.X,
	}).Error("Dose query outside the grid")
}

func (a *Analyzer) structureResult(name string, contours []models.Contour, grid *models.DoseGrid) (StructureResult, error) {
	mask, err := structure.BuildMask(name, contours, grid)
	if err != nil {
		return StructureResult{}, err
	}

	curve, err := dvh.FromMask(name, mask, grid, a.params.Bins)
	if err != nil {
		return StructureResult{}, err
	}

	summary, err := dvh.Summarize(mask, grid)
	if err != nil {
		return StructureResult{}, err
	}

	a.logger.WithFields(logrus.Fields{
		"structure": name,
		"voxels":    summary.Voxels,
		"min":       summary.Min,
		"mean":      summary.Mean,
		"max":       summary.Max,
	}).Info("Computed DVH")

	return StructureResult{DVH: curve, Summary: summary}, nil
}
