package sdd

import (
	hsdderrors "github.com/hsdd-project/hsdd/pkg/errors"
)

// TopError is raised when two SDDs of incompatible shape (different
// terminal kind, different variable, or flat vs. hierarchical) are combined
// by Union, Intersection or Difference. It carries both operands so callers
// can report which pair of diagrams was incompatible.
type TopError struct {
	Left, Right *SDD
	msg         string
}

func (e *TopError) Error() string { return "sdd: top: " + e.msg }

// Unwrap lets errors.Is(err, hsdderrors.ErrTop) succeed for a TopError.
func (e *TopError) Unwrap() error { return hsdderrors.ErrTop }

func topError(left, right *SDD, msg string) *TopError {
	return &TopError{Left: left, Right: right, msg: msg}
}

func invariantViolation(msg string) error {
	return hsdderrors.Wrap(hsdderrors.CodeInvariantViolation, msg, nil)
}
