// Package pinnacle reads a Pinnacle treatment planning dataset (patient,
// plans, trials and image sets) and hands its parts to DICOM converters.
package pinnacle

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"medphys/internal/logging"
)

// Converter writes DICOM objects for parts of a Pinnacle dataset.
type Converter interface {
	ConvertStruct(plan *Plan, exportPath, skipPattern string) error
	ConvertDose(plan *Plan, exportPath string) error
	ConvertPlan(plan *Plan, exportPath string) error
	ConvertImage(image *Image, exportPath string) error
}

// Dataset is a Pinnacle dataset rooted at a directory holding a Patient file.
//
// The patient record, plans and images are each read once, on first use.
// Later calls return the cached result (or the cached error).
type Dataset struct {
	path      string
	reader    RecordReader
	converter Converter
	logger    logrus.FieldLogger

	patientOnce sync.Once
	patientInfo Record
	patientErr  error

	plansOnce sync.Once
	plans     []*Plan
	plansErr  error

	imagesOnce sync.Once
	images     []*Image
	imagesErr  error
}

// New creates a Dataset for the directory at path. A nil logger is replaced
// by a debug-level logger on stdout. The converter may be nil when nothing is
// exported; exports then fail.
func New(path string, reader RecordReader, converter Converter, logger logrus.FieldLogger) *Dataset {
	if logger == nil {
		logger = logging.NewLogger("debug")
	}
	return &Dataset{
		path:      path,
		reader:    reader,
		converter: converter,
		logger:    logger,
	}
}

// Path returns the dataset root directory
func (d *Dataset) Path() string { return d.path }

// Logger returns the logger used by the dataset
func (d *Dataset) Logger() logrus.FieldLogger { return d.logger }

// PatientInfo returns the Patient record with two derived fields: FullName
// (LAST^FIRST^MIDDLE^) and DOB (see NormalizeDOB).
func (d *Dataset) PatientInfo() (Record, error) {
	d.patientOnce.Do(func() {
		d.patientInfo, d.patientErr = d.readPatientInfo()
	})
	return d.patientInfo, d.patientErr
}

func (d *Dataset) readPatientInfo() (Record, error) {
	pathPatient := filepath.Join(d.path, "Patient")
	d.logger.Debugf("Reading patient data from: %s", pathPatient)

	info, err := d.reader.ReadRecord(pathPatient)
	if err != nil {
		return nil, err
	}

	var names [3]string
	for i, key := range []string{"LastName", "FirstName", "MiddleName"} {
		if names[i], err = info.String(pathPatient, key); err != nil {
			return nil, err
		}
	}
	info["FullName"] = FullName(names[0], names[1], names[2])

	dobstr, err := info.String(pathPatient, "DateOfBirth")
	if err != nil {
		return nil, err
	}
	dob := NormalizeDOB(dobstr)
	if _, err := dateparse.ParseAny(dob); err != nil {
		d.logger.WithField("DateOfBirth", dobstr).Warnf("Normalized date of birth %q is not a valid date", dob)
	}
	info["DOB"] = dob

	return info, nil
}

// FullName formats a patient name as LAST^FIRST^MIDDLE^
func FullName(last, first, middle string) string {
	return last + "^" + first + "^" + middle + "^"
}

// NormalizeDOB turns a date of birth written with '-', '/' or ' ' separators
// (checked in that order) into a string of digits, zero-padding single digit
// components. "1990/1/2" becomes "19900102". The result is not validated.
func NormalizeDOB(dob string) string {
	var parts []string
	switch {
	case strings.Contains(dob, "-"):
		parts = strings.Split(dob, "-")
	case strings.Contains(dob, "/"):
		parts = strings.Split(dob, "/")
	default:
		parts = strings.Split(dob, " ")
	}

	var b strings.Builder
	for _, part := range parts {
		if utf8.RuneCountInString(part) == 1 {
			b.WriteString("0")
		}
		b.WriteString(part)
	}
	return b.String()
}

// Plans returns one Plan per entry of the patient's PlanList
func (d *Dataset) Plans() ([]*Plan, error) {
	d.plansOnce.Do(func() {
		d.plans, d.plansErr = d.readPlans()
	})
	return d.plans, d.plansErr
}

func (d *Dataset) readPlans() ([]*Plan, error) {
	info, err := d.PatientInfo()
	if err != nil {
		return nil, err
	}

	entries, err := info.List(filepath.Join(d.path, "Patient"), "PlanList")
	if err != nil {
		return nil, err
	}

	plans := make([]*Plan, 0, len(entries))
	for _, entry := range entries {
		id, err := entry.String(filepath.Join(d.path, "Patient"), "PlanID")
		if err != nil {
			return nil, err
		}
		plans = append(plans, newPlan(d, filepath.Join(d.path, "Plan_"+id), entry))
	}
	return plans, nil
}

// Images returns one Image per entry of the patient's ImageSetList that has
// an ImageInfo file.
func (d *Dataset) Images() ([]*Image, error) {
	d.imagesOnce.Do(func() {
		d.images, d.imagesErr = d.readImages()
	})
	return d.images, d.imagesErr
}

func (d *Dataset) readImages() ([]*Image, error) {
	info, err := d.PatientInfo()
	if err != nil {
		return nil, err
	}

	entries, err := info.List(filepath.Join(d.path, "Patient"), "ImageSetList")
	if err != nil {
		return nil, err
	}

	images := make([]*Image, 0, len(entries))
	for _, entry := range entries {
		image := newImage(d, d.path, entry)

		// An image set without image info is not really available
		info, err := image.ImageInfo()
		if errors.Is(err, fs.ErrNotExist) || (err == nil && len(info) == 0) {
			d.logger.Debugf("Skipping image set without image info: %s", image.Prefix())
			continue
		}
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}
