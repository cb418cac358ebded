package dicomio

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"medphys/internal/models"
	"medphys/pkg/dose"
)

// controlPoint holds the geometry attributes of one control point. Attributes
// absent from the control point are nil.
type controlPoint struct {
	gantryAngle       []float64
	surfaceEntryPoint []float64
	sourceToSurface   []float64
	isocenter         []float64
}

type beam struct {
	sourceAxisDistance []float64
	controlPoints      []controlPoint
}

// RTPlan exposes beam geometry from an RT Plan. It implements dose.Plan.
type RTPlan struct {
	beams []beam
}

var _ dose.Plan = (*RTPlan)(nil)

func optionalFloats(item []*dicom.Element, t tag.Tag) ([]float64, error) {
	el := findInItem(item, t)
	if el == nil {
		return nil, nil
	}
	return elementFloats(el)
}

// NewRTPlan reads the beam sequence of an RT Plan dataset
func NewRTPlan(ds dicom.Dataset) (*RTPlan, error) {
	seq, err := requireElement(ds, tagBeamSequence)
	if err != nil {
		return nil, err
	}
	beamItems, err := sequenceItems(seq)
	if err != nil {
		return nil, err
	}

	plan := &RTPlan{}
	for _, item := range beamItems {
		var b beam
		if b.sourceAxisDistance, err = optionalFloats(item, tagSourceAxisDistance); err != nil {
			return nil, err
		}

		cpItems, err := sequenceItems(findInItem(item, tagControlPointSequence))
		if err != nil {
			return nil, err
		}
		for _, cpItem := range cpItems {
			var cp controlPoint
			if cp.gantryAngle, err = optionalFloats(cpItem, tagGantryAngle); err != nil {
				return nil, err
			}
			if cp.surfaceEntryPoint, err = optionalFloats(cpItem, tagSurfaceEntryPoint); err != nil {
				return nil, err
			}
			if cp.sourceToSurface, err = optionalFloats(cpItem, tagSourceToSurfaceDistance); err != nil {
				return nil, err
			}
			if cp.isocenter, err = optionalFloats(cpItem, tagIsocenterPosition); err != nil {
				return nil, err
			}
			b.controlPoints = append(b.controlPoints, cp)
		}

		plan.beams = append(plan.beams, b)
	}

	return plan, nil
}

// LoadRTPlan reads an RT Plan file from disk
func LoadRTPlan(path string) (*RTPlan, error) {
	logrus.WithField("path", path).Debug("reading RT Plan")

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse RT Plan %s: %w", path, err)
	}
	return NewRTPlan(ds)
}

// singleValue collapses every occurrence of an attribute into one value. It
// returns ok == false if the attribute never occurs and an error if the
// occurrences disagree.
func singleValue(t tag.Tag, occurrences [][]float64) ([]float64, bool, error) {
	var first []float64
	for _, v := range occurrences {
		if v == nil {
			continue
		}
		if first == nil {
			first = v
			continue
		}
		if !equalFloats(first, v) {
			return nil, false, &ElementError{Tag: t, Reason: fmt.Sprintf("plan has more than one value: %v and %v", first, v)}
		}
	}
	return first, first != nil, nil
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *RTPlan) controlPointValues(get func(controlPoint) []float64) [][]float64 {
	var out [][]float64
	for _, b := range p.beams {
		for _, cp := range b.controlPoints {
			out = append(out, get(cp))
		}
	}
	return out
}

func requireSingle(t tag.Tag, occurrences [][]float64, want int) ([]float64, error) {
	v, ok, err := singleValue(t, occurrences)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ElementError{Tag: t, Reason: "missing from every beam"}
	}
	if len(v) != want {
		return nil, &ElementError{Tag: t, Reason: fmt.Sprintf("expected %d values, got %d", want, len(v))}
	}
	return v, nil
}

// GantryAngles returns the gantry angle of every control point that has one
func (p *RTPlan) GantryAngles() ([]float64, error) {
	var angles []float64
	for _, v := range p.controlPointValues(func(cp controlPoint) []float64 { return cp.gantryAngle }) {
		angles = append(angles, v...)
	}
	return angles, nil
}

// SurfaceEntryPoint returns the plan's explicit surface entry point, if any
func (p *RTPlan) SurfaceEntryPoint() (models.Point3D, bool, error) {
	v, ok, err := singleValue(tagSurfaceEntryPoint,
		p.controlPointValues(func(cp controlPoint) []float64 { return cp.surfaceEntryPoint }))
	if err != nil || !ok {
		return models.Point3D{}, false, err
	}
	if len(v) != 3 {
		return models.Point3D{}, false, &ElementError{Tag: tagSurfaceEntryPoint, Reason: fmt.Sprintf("expected 3 values, got %d", len(v))}
	}
	return models.Point3D{X: v[0], Y: v[1], Z: v[2]}, true, nil
}

func (p *RTPlan) SourceAxisDistance() (float64, error) {
	var occurrences [][]float64
	for _, b := range p.beams {
		occurrences = append(occurrences, b.sourceAxisDistance)
	}
	v, err := requireSingle(tagSourceAxisDistance, occurrences, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (p *RTPlan) SourceToSurfaceDistance() (float64, error) {
	v, err := requireSingle(tagSourceToSurfaceDistance,
		p.controlPointValues(func(cp controlPoint) []float64 { return cp.sourceToSurface }), 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (p *RTPlan) IsocenterPosition() (models.Point3D, error) {
	v, err := requireSingle(tagIsocenterPosition,
		p.controlPointValues(func(cp controlPoint) []float64 { return cp.isocenter }), 3)
	if err != nil {
		return models.Point3D{}, err
	}
	return models.Point3D{X: v[0], Y: v[1], Z: v[2]}, nil
}
