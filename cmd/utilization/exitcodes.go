package main

import (
	"errors"

	"github.com/iota-uz/utilization/modules/planning/services"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitDBWrite    = 5
	exitPartial    = 6
	exitQueue      = 7
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// importExitCode classifies an import failure: rejected files, partially written
// plans and everything else the store refused.
func importExitCode(err error) int {
	var partial *services.PartialWriteError
	switch {
	case errors.As(err, &partial):
		return exitPartial
	case errors.Is(err, services.ErrSheetMissing),
		errors.Is(err, services.ErrTooFewRows),
		errors.Is(err, services.ErrNoPeriods),
		errors.Is(err, services.ErrNoDeclaration),
		errors.Is(err, services.ErrInvalidEvent),
		errors.Is(err, spreadsheet.ErrNotWorkbook):
		return exitValidation
	}
	return exitDBWrite
}
