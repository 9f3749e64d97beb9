package rustdoc

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is returned when input is not valid rustdoc JSON.
	ErrSchema = errors.New("invalid rustdoc JSON")
	// ErrStructure is returned when the crate's module structure is unusable.
	ErrStructure = errors.New("invalid crate structure")
)

// SchemaError describes why input failed to load. Table is set when a
// required top-level table is missing.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%v: missing required table %q", ErrSchema, e.Table)
	}
	return fmt.Sprintf("%v: %v", ErrSchema, e.Err)
}

func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchema}
	}
	return []error{ErrSchema, e.Err}
}

// StructureError describes a crate whose module tree cannot be built.
type StructureError struct {
	ID     ID
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%v: item %d: %s", ErrStructure, e.ID, e.Reason)
}

func (e *StructureError) Unwrap() error {
	return ErrStructure
}
