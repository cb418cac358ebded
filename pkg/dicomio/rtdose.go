package dicomio

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"medphys/internal/models"
)

// axisAligned is the only image orientation (up to sign) the dose loaders
// support: rows along x, columns along y.
var axisAligned = [6]float64{1, 0, 0, 0, 1, 0}

// axesFromGeometry builds the physical x, y and z axes of a dose grid from
// its image plane attributes. spacing is (row spacing, column spacing) as
// stored in PixelSpacing.
func axesFromGeometry(position, orientation, spacing []float64, rows, cols int, offsets []float64) (x, y, z []float64, err error) {
	switch {
	case len(position) != 3:
		return nil, nil, nil, &ElementError{Tag: tag.ImagePositionPatient, Reason: fmt.Sprintf("expected 3 values, got %d", len(position))}
	case len(orientation) != 6:
		return nil, nil, nil, &ElementError{Tag: tag.ImageOrientationPatient, Reason: fmt.Sprintf("expected 6 values, got %d", len(orientation))}
	case len(spacing) != 2:
		return nil, nil, nil, &ElementError{Tag: tag.PixelSpacing, Reason: fmt.Sprintf("expected 2 values, got %d", len(spacing))}
	}
	for i, v := range orientation {
		if math.Abs(v) != axisAligned[i] {
			return nil, nil, nil, &ElementError{
				Tag:    tag.ImageOrientationPatient,
				Reason: fmt.Sprintf("orientation %v is not supported, only axis-aligned grids are", orientation),
			}
		}
	}

	x = make([]float64, cols)
	for i := range x {
		x[i] = position[0] + orientation[0]*float64(i)*spacing[1]
	}

	y = make([]float64, rows)
	for j := range y {
		y[j] = position[1] + orientation[4]*float64(j)*spacing[0]
	}

	z = make([]float64, len(offsets))
	for k, off := range offsets {
		z[k] = position[2] + off
	}

	return x, y, z, nil
}

// AxesFromDataset returns the x, y and z coordinates of an RT Dose grid
func AxesFromDataset(ds dicom.Dataset) (x, y, z []float64, err error) {
	position, err := datasetFloats(ds, tag.ImagePositionPatient, 3)
	if err != nil {
		return nil, nil, nil, err
	}
	orientation, err := datasetFloats(ds, tag.ImageOrientationPatient, 6)
	if err != nil {
		return nil, nil, nil, err
	}
	spacing, err := datasetFloats(ds, tag.PixelSpacing, 2)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, err := datasetInt(ds, tag.Rows)
	if err != nil {
		return nil, nil, nil, err
	}
	cols, err := datasetInt(ds, tag.Columns)
	if err != nil {
		return nil, nil, nil, err
	}
	offsets, err := datasetFloats(ds, tagGridFrameOffsetVector, 0)
	if err != nil {
		return nil, nil, nil, err
	}

	return axesFromGeometry(position, orientation, spacing, rows, cols, offsets)
}

// DoseFromDataset returns the dose grid values in (z, y, x) order, scaled by
// DoseGridScaling.
func DoseFromDataset(ds dicom.Dataset) ([]float64, error) {
	scaling, err := datasetFloats(ds, tagDoseGridScaling, 1)
	if err != nil {
		return nil, err
	}

	pixelDataElement, err := requireElement(ds, tag.PixelData)
	if err != nil {
		return nil, err
	}
	pixelDataInfo := dicom.MustGetPixelDataInfo(pixelDataElement.Value)
	if len(pixelDataInfo.Frames) == 0 {
		return nil, &ElementError{Tag: tag.PixelData, Reason: "no frames found"}
	}

	var dose []float64
	for n, frame := range pixelDataInfo.Frames {
		if frame.Encapsulated {
			return nil, &ElementError{Tag: tag.PixelData, Reason: fmt.Sprintf("frame %d: encapsulated pixel data is not supported", n)}
		}
		for _, pixel := range frame.NativeData.Data {
			if len(pixel) == 0 {
				return nil, &ElementError{Tag: tag.PixelData, Reason: fmt.Sprintf("frame %d: empty pixel sample", n)}
			}
			dose = append(dose, float64(pixel[0])*scaling[0])
		}
	}

	return dose, nil
}

// GridFromDataset combines AxesFromDataset and DoseFromDataset into a
// validated grid.
func GridFromDataset(ds dicom.Dataset) (*models.DoseGrid, error) {
	x, y, z, err := AxesFromDataset(ds)
	if err != nil {
		return nil, err
	}
	dose, err := DoseFromDataset(ds)
	if err != nil {
		return nil, err
	}

	grid := &models.DoseGrid{Z: z, Y: y, X: x, Dose: dose}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dose grid: %w", err)
	}
	return grid, nil
}

// LoadDoseGrid reads an RT Dose file from disk
func LoadDoseGrid(path string) (*models.DoseGrid, error) {
	logrus.WithField("path", path).Debug("reading RT Dose")

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse RT Dose %s: %w", path, err)
	}

	grid, err := GridFromDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("RT Dose %s: %w", path, err)
	}

	nz, ny, nx := grid.Shape()
	logrus.WithFields(logrus.Fields{"path": path, "z": nz, "y": ny, "x": nx}).Debug("loaded dose grid")

	return grid, nil
}
