package backup

import (
	"errors"
	"fmt"
)

// ErrImportFailed marks a failure after the payload was accepted: either the
// relational replacement or the file replay.
var ErrImportFailed = errors.New("import failed")

// Phases of an import.
const (
	PhaseRelational = "relational"
	PhaseFiles      = "files"
)

// ImportError reports which phase failed. A relational failure leaves the
// organization's data untouched. A files failure happens after the relational
// data was committed; re-submitting the same archive repairs the files.
type ImportError struct {
	Phase string
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed (%s phase): %v", e.Phase, e.Err)
}

func (e *ImportError) Unwrap() []error {
	return []error{ErrImportFailed, e.Err}
}
