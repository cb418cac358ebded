package pinnacle

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Image is one ImageSet_<ImageSetID> of a dataset
type Image struct {
	Root  string
	Entry Record

	dataset *Dataset

	infoOnce sync.Once
	info     []Record
	infoErr  error

	headerOnce sync.Once
	header     Record
	headerErr  error
}

func newImage(dataset *Dataset, root string, entry Record) *Image {
	return &Image{Root: root, Entry: entry, dataset: dataset}
}

// Prefix returns the path shared by the image set's files, without extension
func (im *Image) Prefix() string {
	return filepath.Join(im.Root, fmt.Sprintf("ImageSet_%v", im.Entry["ImageSetID"]))
}

// ImageInfo returns the slices listed in the image set's .ImageInfo file. A
// file without an ImageInfoList yields no slices.
func (im *Image) ImageInfo() ([]Record, error) {
	im.infoOnce.Do(func() {
		path := im.Prefix() + ".ImageInfo"
		im.dataset.logger.Debugf("Reading image info from: %s", path)

		record, err := im.dataset.reader.ReadRecord(path)
		if err != nil {
			im.infoErr = err
			return
		}
		if _, ok := record["ImageInfoList"]; !ok {
			im.dataset.logger.Debugf("No ImageInfoList in %s", path)
			return
		}
		im.info, im.infoErr = record.List(path, "ImageInfoList")
	})
	return im.info, im.infoErr
}

// SeriesUID returns the SeriesUID of the first image info record, or an
// empty string when there is none.
func (im *Image) SeriesUID() (string, error) {
	info, err := im.ImageInfo()
	if err != nil || len(info) == 0 {
		return "", err
	}
	if info[0]["SeriesUID"] == nil {
		return "", nil
	}
	return info[0].String(im.Prefix()+".ImageInfo", "SeriesUID")
}

// ImageHeader returns the image set's .header record
func (im *Image) ImageHeader() (Record, error) {
	im.headerOnce.Do(func() {
		path := im.Prefix() + ".header"
		im.dataset.logger.Debugf("Reading image header from: %s", path)
		im.header, im.headerErr = im.dataset.reader.ReadRecord(path)
	})
	return im.header, im.headerErr
}
