package dose

import (
	"fmt"

	"medphys/internal/models"
)

// Plan exposes the beam geometry of a treatment plan.
type Plan interface {
	// GantryAngles returns every gantry angle found in the plan's beams
	GantryAngles() ([]float64, error)

	// SurfaceEntryPoint returns the explicit surface entry point. The boolean
	// is false when the plan does not carry one.
	SurfaceEntryPoint() (models.Point3D, bool, error)

	SourceAxisDistance() (float64, error)
	SourceToSurfaceDistance() (float64, error)
	IsocenterPosition() (models.Point3D, error)
}

// RequireGantryZero returns an *UnsupportedGeometryError unless every beam in
// the plan is delivered at gantry angle 0. Depth is mapped onto the y axis,
// which only holds for a beam pointing straight down.
func RequireGantryZero(plan Plan) error {
	angles, err := plan.GantryAngles()
	if err != nil {
		return err
	}
	if len(angles) == 0 {
		return &UnsupportedGeometryError{Reason: "plan has no gantry angles; only gantry angle 0 is supported"}
	}
	for _, angle := range angles {
		if angle != 0 {
			return &UnsupportedGeometryError{
				Reason: fmt.Sprintf("gantry angle %g found; only gantry angle 0 is supported", angle),
			}
		}
	}
	return nil
}

// ResolveSurfaceEntryPoint returns the plan's explicit surface entry point if
// it has one. Otherwise the point is computed from the isocentre by stepping
// back (SAD - SSD) along the beam axis.
func ResolveSurfaceEntryPoint(plan Plan) (models.Point3D, error) {
	point, ok, err := plan.SurfaceEntryPoint()
	if err != nil {
		return models.Point3D{}, err
	}
	if ok {
		return point, nil
	}

	if err := RequireGantryZero(plan); err != nil {
		return models.Point3D{}, err
	}

	ssd, err := plan.SourceToSurfaceDistance()
	if err != nil {
		return models.Point3D{}, fmt.Errorf("computing surface entry point: %w", err)
	}
	sad, err := plan.SourceAxisDistance()
	if err != nil {
		return models.Point3D{}, fmt.Errorf("computing surface entry point: %w", err)
	}
	iso, err := plan.IsocenterPosition()
	if err != nil {
		return models.Point3D{}, fmt.Errorf("computing surface entry point: %w", err)
	}

	depth := sad - ssd

	return models.Point3D{X: iso.X, Y: iso.Y - depth, Z: iso.Z}, nil
}
