// Package dicomio reads RT Dose, RT Structure Set and RT Plan objects into
// the types used by the dose analysis packages.
package dicomio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// RT module tags. They are spelled out here rather than looked up by name so
// the loaders do not depend on the dictionary keyword for each one.
var (
	tagGridFrameOffsetVector = tag.Tag{Group: 0x3004, Element: 0x000C}
	tagDoseGridScaling       = tag.Tag{Group: 0x3004, Element: 0x000E}

	tagStructureSetROISequence = tag.Tag{Group: 0x3006, Element: 0x0020}
	tagROINumber               = tag.Tag{Group: 0x3006, Element: 0x0022}
	tagROIName                 = tag.Tag{Group: 0x3006, Element: 0x0026}
	tagROIContourSequence      = tag.Tag{Group: 0x3006, Element: 0x0039}
	tagContourSequence         = tag.Tag{Group: 0x3006, Element: 0x0040}
	tagContourData             = tag.Tag{Group: 0x3006, Element: 0x0050}
	tagReferencedROINumber     = tag.Tag{Group: 0x3006, Element: 0x0084}

	tagBeamSequence            = tag.Tag{Group: 0x300A, Element: 0x00B0}
	tagSourceAxisDistance      = tag.Tag{Group: 0x300A, Element: 0x00B4}
	tagControlPointSequence    = tag.Tag{Group: 0x300A, Element: 0x0111}
	tagGantryAngle             = tag.Tag{Group: 0x300A, Element: 0x011E}
	tagIsocenterPosition       = tag.Tag{Group: 0x300A, Element: 0x012C}
	tagSurfaceEntryPoint       = tag.Tag{Group: 0x300A, Element: 0x012E}
	tagSourceToSurfaceDistance = tag.Tag{Group: 0x300A, Element: 0x0130}
)

// ElementError is returned when a required element is missing or holds a
// value of an unexpected form.
type ElementError struct {
	Tag    tag.Tag
	Reason string
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("dicom element (%04X,%04X): %s", e.Tag.Group, e.Tag.Element, e.Reason)
}

func requireElement(ds dicom.Dataset, t tag.Tag) (*dicom.Element, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil || el.Value == nil {
		return nil, &ElementError{Tag: t, Reason: "missing"}
	}
	return el, nil
}

func findInItem(elements []*dicom.Element, t tag.Tag) *dicom.Element {
	for _, el := range elements {
		if el != nil && el.Tag == t && el.Value != nil {
			return el
		}
	}
	return nil
}

// floatsFromValue converts the value of a numeric element. Decimal and integer
// strings (DS, IS) arrive as []string; binary VRs arrive as numeric slices.
func floatsFromValue(v interface{}) ([]float64, error) {
	switch values := v.(type) {
	case []float64:
		return values, nil
	case []float32:
		out := make([]float64, len(values))
		for i, f := range values {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make([]float64, len(values))
		for i, n := range values {
			out[i] = float64(n)
		}
		return out, nil
	case []string:
		var out []float64
		for _, s := range values {
			// Some writers pack multiple values into a single backslash separated string
			for _, part := range strings.Split(s, "\\") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				f, err := strconv.ParseFloat(part, 64)
				if err != nil {
					return nil, fmt.Errorf("parsing %q: %w", part, err)
				}
				out = append(out, f)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func elementFloats(el *dicom.Element) ([]float64, error) {
	values, err := floatsFromValue(el.Value.GetValue())
	if err != nil {
		return nil, &ElementError{Tag: el.Tag, Reason: err.Error()}
	}
	return values, nil
}

func datasetFloats(ds dicom.Dataset, t tag.Tag, want int) ([]float64, error) {
	el, err := requireElement(ds, t)
	if err != nil {
		return nil, err
	}
	values, err := elementFloats(el)
	if err != nil {
		return nil, err
	}
	if want > 0 && len(values) != want {
		return nil, &ElementError{Tag: t, Reason: fmt.Sprintf("expected %d values, got %d", want, len(values))}
	}
	return values, nil
}

func datasetInt(ds dicom.Dataset, t tag.Tag) (int, error) {
	values, err := datasetFloats(ds, t, 1)
	if err != nil {
		return 0, err
	}
	return int(values[0]), nil
}

func elementString(el *dicom.Element) string {
	if el == nil {
		return ""
	}
	values, ok := el.Value.GetValue().([]string)
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// sequenceItems returns the elements of every item in a sequence element
func sequenceItems(el *dicom.Element) ([][]*dicom.Element, error) {
	if el == nil {
		return nil, nil
	}
	items, ok := el.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil, &ElementError{Tag: el.Tag, Reason: "not a sequence"}
	}

	out := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		elements, ok := item.GetValue().([]*dicom.Element)
		if !ok {
			return nil, &ElementError{Tag: el.Tag, Reason: "malformed sequence item"}
		}
		out = append(out, elements)
	}
	return out, nil
}
