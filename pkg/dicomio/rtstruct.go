package dicomio

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/suyashkumar/dicom"

	"medphys/internal/models"
)

// contourFromData splits a flat ContourData (x0, y0, z0, x1, y1, z1, ...)
// into a Contour. The slice position is taken from the first vertex.
func contourFromData(data []float64) (models.Contour, error) {
	if len(data) == 0 || len(data)%3 != 0 {
		return models.Contour{}, &ElementError{Tag: tagContourData, Reason: fmt.Sprintf("%d values, expected a multiple of 3", len(data))}
	}

	n := len(data) / 3
	c := models.Contour{
		Z: data[2],
		X: make([]float64, n),
		Y: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c.X[i] = data[3*i]
		c.Y[i] = data[3*i+1]
	}
	return c, nil
}

// roiNumber finds the ROI number of the named structure
func roiNumber(ds dicom.Dataset, name string) (int, error) {
	seq, err := requireElement(ds, tagStructureSetROISequence)
	if err != nil {
		return 0, err
	}
	items, err := sequenceItems(seq)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		if elementString(findInItem(item, tagROIName)) != name {
			continue
		}
		numberElement := findInItem(item, tagROINumber)
		if numberElement == nil {
			return 0, &ElementError{Tag: tagROINumber, Reason: fmt.Sprintf("missing for structure %q", name)}
		}
		values, err := elementFloats(numberElement)
		if err != nil {
			return 0, err
		}
		if len(values) != 1 {
			return 0, &ElementError{Tag: tagROINumber, Reason: "expected a single value"}
		}
		return int(values[0]), nil
	}

	return 0, &ElementError{Tag: tagROIName, Reason: fmt.Sprintf("no structure named %q", name)}
}

// PullStructure returns every contour of the named structure
func PullStructure(name string, ds dicom.Dataset) ([]models.Contour, error) {
	number, err := roiNumber(ds, name)
	if err != nil {
		return nil, err
	}

	seq, err := requireElement(ds, tagROIContourSequence)
	if err != nil {
		return nil, err
	}
	roiContours, err := sequenceItems(seq)
	if err != nil {
		return nil, err
	}

	for _, item := range roiContours {
		ref := findInItem(item, tagReferencedROINumber)
		if ref == nil {
			continue
		}
		refs, err := elementFloats(ref)
		if err != nil || len(refs) != 1 || int(refs[0]) != number {
			continue
		}

		contourItems, err := sequenceItems(findInItem(item, tagContourSequence))
		if err != nil {
			return nil, err
		}

		contours := make([]models.Contour, 0, len(contourItems))
		for n, contourItem := range contourItems {
			dataElement := findInItem(contourItem, tagContourData)
			if dataElement == nil {
				return nil, &ElementError{Tag: tagContourData, Reason: fmt.Sprintf("missing in contour %d of %q", n, name)}
			}
			data, err := elementFloats(dataElement)
			if err != nil {
				return nil, err
			}
			contour, err := contourFromData(data)
			if err != nil {
				return nil, fmt.Errorf("structure %q contour %d: %w", name, n, err)
			}
			contours = append(contours, contour)
		}
		return contours, nil
	}

	return nil, &ElementError{Tag: tagROIContourSequence, Reason: fmt.Sprintf("structure %q (ROI %d) has no contours", name, number)}
}

// LoadStructures reads an RT Structure Set file once and returns the
// contours of each named structure.
func LoadStructures(path string, names []string) (map[string][]models.Contour, error) {
	logrus.WithFields(logrus.Fields{"path": path, "structures": names}).Debug("reading RT Structure Set")

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse RT Structure Set %s: %w", path, err)
	}

	structures := make(map[string][]models.Contour, len(names))
	for _, name := range names {
		contours, err := PullStructure(name, ds)
		if err != nil {
			return nil, err
		}
		structures[name] = contours
	}
	return structures, nil
}
