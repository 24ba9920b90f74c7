package table

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrFieldNotFound = errors.New("table: field not found")
	ErrArity         = errors.New("table: row arity does not match field count")
	ErrInvalidSchema = errors.New("table: invalid field list")
	ErrInvalidKey    = errors.New("table: key must be non-empty and free of whitespace")
)

// Load errors. Every one of them wraps ErrLoadFormat.
var (
	ErrLoadFormat     = errors.New("invalid table format")
	ErrLoadMetadata   = errors.Wrap(ErrLoadFormat, "failed to parse table metadata")
	ErrLoadFields     = errors.Wrap(ErrLoadFormat, "failed to load field names")
	ErrLoadMissingKey = errors.Wrap(ErrLoadFormat, "missing or invalid KEY field")
	ErrLoadRowArity   = errors.Wrap(ErrLoadFormat, "wrong number of values in row")
	ErrLoadValue      = errors.Wrap(ErrLoadFormat, "non-integer value in row")
)

// LoadError reports a load failure tied to a line of the input.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("load %q: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load: line %d: %v", e.Line, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
