package pinnacle

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
)

// DefaultExportPath is used when an export is given an empty path
const DefaultExportPath = "."

// DefaultSkipPattern matches no ROI name
const DefaultSkipPattern = "^$"

var errNoConverter = errors.New("pinnacle dataset has no converter")

func exportPath(path string) string {
	if path == "" {
		return DefaultExportPath
	}
	return path
}

// ExportStruct exports the plan's ROIs as an RT Struct, skipping ROIs whose
// name matches skipPattern (for example "RadCalc|normal_tissue").
func (d *Dataset) ExportStruct(plan *Plan, path, skipPattern string) error {
	if skipPattern == "" {
		skipPattern = DefaultSkipPattern
	}
	if d.converter == nil {
		return errNoConverter
	}
	if _, err := regexp.Compile(skipPattern); err != nil {
		return fmt.Errorf("invalid skip pattern %q: %w", skipPattern, err)
	}
	return d.converter.ConvertStruct(plan, exportPath(path), skipPattern)
}

// ExportDose exports the plan's dose as an RT Dose
func (d *Dataset) ExportDose(plan *Plan, path string) error {
	if d.converter == nil {
		return errNoConverter
	}
	return d.converter.ConvertDose(plan, exportPath(path))
}

// ExportPlan exports the plan as an RT Plan
func (d *Dataset) ExportPlan(plan *Plan, path string) error {
	if d.converter == nil {
		return errNoConverter
	}
	return d.converter.ConvertPlan(plan, exportPath(path))
}

// ExportImage exports the first image whose SeriesUID equals seriesUID and,
// independently, the image passed in. Either may be omitted; both may fire.
func (d *Dataset) ExportImage(image *Image, seriesUID, path string) error {
	path = exportPath(path)

	if d.converter == nil {
		return errNoConverter
	}
	if image == nil && seriesUID == "" {
		d.logger.Error("No image to export")
		return nil
	}

	if seriesUID != "" {
		images, err := d.Images()
		if err != nil {
			return err
		}
		for _, im := range images {
			uid, err := im.SeriesUID()
			if err != nil {
				return err
			}
			if uid == seriesUID {
				if err := d.converter.ConvertImage(im, path); err != nil {
					return fmt.Errorf("error exporting series %s: %w", seriesUID, err)
				}
				break
			}
		}
	}

	if image != nil {
		return d.converter.ConvertImage(image, path)
	}
	return nil
}

// LogImages logs modality, series UID and series date of each image. Images
// without a header are skipped.
func (d *Dataset) LogImages() error {
	images, err := d.Images()
	if err != nil {
		return err
	}

	for _, im := range images {
		header, err := im.ImageHeader()
		if errors.Is(err, fs.ErrNotExist) || (err == nil && len(header) == 0) {
			d.logger.Warnf("No image header for %s", im.Prefix())
			continue
		}
		if err != nil {
			return err
		}

		d.logger.Infof("%s: %s %s",
			headerField(header, "modality"),
			headerField(header, "series_UID"),
			headerField(header, "SeriesDateTime"))
	}
	return nil
}

func headerField(header Record, key string) string {
	v, ok := header[key]
	if !ok || v == nil {
		return "?"
	}
	return fmt.Sprint(v)
}

// LogPlanNames logs the name of each plan
func (d *Dataset) LogPlanNames() error {
	plans, err := d.Plans()
	if err != nil {
		return err
	}
	for _, p := range plans {
		name, err := p.Name()
		if err != nil {
			return err
		}
		d.logger.Info(name)
	}
	return nil
}

// LogTrialNames logs every plan followed by its trials
func (d *Dataset) LogTrialNames() error {
	plans, err := d.Plans()
	if err != nil {
		return err
	}
	for _, p := range plans {
		if err := d.logTrials(p, false); err != nil {
			return err
		}
	}
	return nil
}

// LogTrialNamesInPlan logs the plan's name and path followed by its trials
func (d *Dataset) LogTrialNamesInPlan(plan *Plan) error {
	return d.logTrials(plan, true)
}

func (d *Dataset) logTrials(plan *Plan, withPath bool) error {
	name, err := plan.Name()
	if err != nil {
		return err
	}
	trials, err := plan.Trials()
	if err != nil {
		return err
	}

	d.logger.Infof("### %s ###", name)
	if withPath {
		d.logger.Info(plan.Path)
	}
	for _, t := range trials {
		trialName, err := t.String(plan.Path, "Name")
		if err != nil {
			return err
		}
		d.logger.Infof("- %s", trialName)
	}
	return nil
}
