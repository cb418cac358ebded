package pinnacle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Record is one parsed Pinnacle file: a mapping of keys to strings, numbers,
// nested records and lists.
type Record map[string]interface{}

// RecordReader parses a Pinnacle file into a Record.
type RecordReader interface {
	ReadRecord(path string) (Record, error)
}

// DatasetIntegrityError is returned when a Pinnacle file lacks an expected
// field or holds it in an unexpected form.
type DatasetIntegrityError struct {
	Path   string
	Field  string
	Reason string
}

func (e *DatasetIntegrityError) Error() string {
	return fmt.Sprintf("pinnacle dataset %s: field %q %s", e.Path, e.Field, e.Reason)
}

func asRecord(v interface{}) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]interface{}:
		return Record(m), true
	case map[interface{}]interface{}:
		r := make(Record, len(m))
		for k, val := range m {
			r[fmt.Sprint(k)] = val
		}
		return r, true
	default:
		return nil, false
	}
}

// String returns the field formatted as a string. Numbers are formatted
// with fmt.Sprint so numeric IDs can be used in paths.
func (r Record) String(path, key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", &DatasetIntegrityError{Path: path, Field: key, Reason: "is missing"}
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// List returns the field as a list of records. A single record is treated
// as a list of one.
func (r Record) List(path, key string) ([]Record, error) {
	v, ok := r[key]
	if !ok {
		return nil, &DatasetIntegrityError{Path: path, Field: key, Reason: "is missing"}
	}
	if v == nil {
		return nil, nil
	}
	if single, ok := asRecord(v); ok {
		return []Record{single}, nil
	}

	var items []interface{}
	switch l := v.(type) {
	case []interface{}:
		items = l
	case []Record:
		return l, nil
	default:
		return nil, &DatasetIntegrityError{Path: path, Field: key, Reason: fmt.Sprintf("is a %T, expected a list", v)}
	}

	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec, ok := asRecord(item)
		if !ok {
			return nil, &DatasetIntegrityError{Path: path, Field: key, Reason: fmt.Sprintf("item %d is a %T, expected a record", i, item)}
		}
		out = append(out, rec)
	}
	return out, nil
}

// YAMLRecordReader reads Pinnacle files that have already been rendered as
// YAML documents.
type YAMLRecordReader struct{}

func (YAMLRecordReader) ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if record == nil {
		record = Record{}
	}
	return record, nil
}
