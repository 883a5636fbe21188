// Package codec turns note and folder collections into bytes and back.
//
// A persisted value is an envelope holding a version and a list of records.
// Decoding is strict per record: a record with unknown fields or without an id is
// skipped and counted, while the rest of the collection is still returned.
package codec

import (
	"fmt"
	"sort"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Version is the envelope version written by this package.
const Version = 1

// Format is a concrete wire/storage encoding.
type Format interface {
	// Name identifies the format in configuration ("json", "yaml").
	Name() string
	// Encode writes an envelope holding records.
	Encode(records any) ([]byte, error)
	// Split parses the envelope and returns its records undecoded.
	Split(data []byte) ([]Record, error)
}

// Record is a single undecoded element of an envelope.
type Record interface {
	// Decode strictly decodes the record into v.
	Decode(v any) error
}

// Formats returns the built-in formats keyed by name.
func Formats() map[string]Format {
	return map[string]Format{
		"json": JSON{},
		"yaml": YAML{},
		"yml":  YAML{},
	}
}

// Lookup resolves a format by name. An empty name selects JSON.
func Lookup(name string) (Format, error) {
	if name == "" {
		return JSON{}, nil
	}
	f, ok := Formats()[name]
	if !ok {
		names := make([]string, 0, len(Formats()))
		for n := range Formats() {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown format %q (known: %v)", name, names)
	}
	return f, nil
}

// EncodeNotes serializes notes field for field.
func EncodeNotes(f Format, notes []core.Note) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	return f.Encode(notes)
}

// EncodeFolders serializes folders field for field.
func EncodeFolders(f Format, folders []core.Folder) ([]byte, error) {
	if folders == nil {
		folders = []core.Folder{}
	}
	return f.Encode(folders)
}

// DecodeNotes decodes every well-formed note and reports how many records were skipped.
// The error is non-nil only when the envelope itself cannot be parsed.
func DecodeNotes(f Format, data []byte) ([]core.Note, int, error) {
	return decodeAll(f, data, func(n core.Note) error { return n.Validate() })
}

// DecodeFolders decodes every well-formed folder and reports how many records were skipped.
func DecodeFolders(f Format, data []byte) ([]core.Folder, int, error) {
	return decodeAll(f, data, func(fo core.Folder) error { return fo.Validate() })
}

// DecodeRecords decodes already split records, skipping the ones that fail.
func DecodeRecords[T any](records []Record, validate func(T) error) ([]T, int) {
	out := make([]T, 0, len(records))
	skipped := 0
	for _, r := range records {
		var v T
		if err := r.Decode(&v); err != nil {
			skipped++
			continue
		}
		if validate != nil {
			if err := validate(v); err != nil {
				skipped++
				continue
			}
		}
		out = append(out, v)
	}
	return out, skipped
}

func decodeAll[T any](f Format, data []byte, validate func(T) error) ([]T, int, error) {
	records, err := f.Split(data)
	if err != nil {
		return nil, 0, err
	}
	out, skipped := DecodeRecords(records, validate)
	return out, skipped, nil
}
