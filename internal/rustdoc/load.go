package rustdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstd frame magic; docs.rs serves rustdoc JSON as .json.zst.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Load parses rustdoc JSON, decompressing it first if it is zstd-framed.
func Load(data []byte) (*Crate, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		decoded, err := decompress(data)
		if err != nil {
			return nil, &SchemaError{Err: err}
		}
		data = decoded
	}

	var raw struct {
		Root           *ID                      `json:"root"`
		CrateVersion   *string                  `json:"crate_version"`
		Index          map[ID]*Item             `json:"index"`
		Paths          map[ID]Summary           `json:"paths"`
		ExternalCrates map[uint32]ExternalCrate `json:"external_crates"`
		FormatVersion  int                      `json:"format_version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("unmarshaling rustdoc JSON: %w", err)}
	}

	switch {
	case raw.Root == nil:
		return nil, &SchemaError{Table: "root"}
	case raw.Index == nil:
		return nil, &SchemaError{Table: "index"}
	case raw.Paths == nil:
		return nil, &SchemaError{Table: "paths"}
	}
	if raw.ExternalCrates == nil {
		raw.ExternalCrates = map[uint32]ExternalCrate{}
	}

	// Older formats omit the id inside the item; the map key is canonical.
	for id, item := range raw.Index {
		if item == nil {
			delete(raw.Index, id)
			continue
		}
		item.ID = id
	}

	return &Crate{
		Root:           *raw.Root,
		CrateVersion:   raw.CrateVersion,
		Index:          raw.Index,
		Paths:          raw.Paths,
		ExternalCrates: raw.ExternalCrates,
		FormatVersion:  raw.FormatVersion,
	}, nil
}

// LoadReader reads all of r and parses it with Load.
func LoadReader(r io.Reader) (*Crate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rustdoc JSON: %w", err)
	}
	return Load(data)
}

// LoadFile reads and parses the rustdoc JSON file at path.
func LoadFile(path string) (*Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rustdoc JSON: %w", err)
	}
	crate, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return crate, nil
}

func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing rustdoc JSON: %w", err)
	}
	return out, nil
}
