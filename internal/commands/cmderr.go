package commands

import (
	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/output"
)

// printedError marks an error whose JSON response has already been written
// to stdout by cmdErr, so Execute's top-level handler doesn't log it twice.
type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

// cmdErr prints err as a JSON error response and returns a printedError so
// cobra exits non-zero without re-printing a human-readable message.
func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	if printErr := output.PrintError(errs.RootCause(err)); printErr != nil {
		return printErr
	}
	return printedError{err: err}
}

// cmdOK prints data as a JSON success response.
func cmdOK(data interface{}) error {
	return output.PrintSuccess(data)
}
