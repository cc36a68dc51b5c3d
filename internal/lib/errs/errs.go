// Package errs defines the error taxonomy shared by the analysis libraries.
//
// Every operation validates its inputs up front and returns a ValidationError
// or GeometryError before doing any work; bounded iterative solves that fail
// to converge return a ComputationError rather than an approximation.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError indicates an out-of-range or non-physical scalar input,
// such as a non-positive span length or tension.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// GeometryError indicates malformed, empty, or degenerate geometry input,
// including out-of-range longitude/latitude.
type GeometryError struct {
	Msg string
}

func (e *GeometryError) Error() string { return e.Msg }

// ComputationError indicates a bounded iterative solve failed to converge
// within its iteration limit.
type ComputationError struct {
	Msg string
}

func (e *ComputationError) Error() string { return e.Msg }

// ConstraintInfeasibleError indicates no feasible solution exists for the
// requested spacing constraints.
type ConstraintInfeasibleError struct {
	Msg string
}

func (e *ConstraintInfeasibleError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Geometryf builds a GeometryError.
func Geometryf(format string, args ...any) error {
	return &GeometryError{Msg: fmt.Sprintf(format, args...)}
}

// Computationf builds a ComputationError.
func Computationf(format string, args ...any) error {
	return &ComputationError{Msg: fmt.Sprintf(format, args...)}
}

// Infeasiblef builds a ConstraintInfeasibleError.
func Infeasiblef(format string, args ...any) error {
	return &ConstraintInfeasibleError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsGeometry reports whether err is a GeometryError.
func IsGeometry(err error) bool {
	var e *GeometryError
	return errors.As(err, &e)
}

// IsComputation reports whether err is a ComputationError.
func IsComputation(err error) bool {
	var e *ComputationError
	return errors.As(err, &e)
}

// IsInfeasible reports whether err is a ConstraintInfeasibleError.
func IsInfeasible(err error) bool {
	var e *ConstraintInfeasibleError
	return errors.As(err, &e)
}
