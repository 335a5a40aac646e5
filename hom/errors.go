package hom

import (
	hsdderrors "github.com/hsdd-project/hsdd/pkg/errors"
	"github.com/hsdd-project/hsdd/sdd"
)

// ErrInterrupt is returned by a user callback (an InductiveBody operator, or
// a values.Function) to abort evaluation early. The evaluator checks for it
// after every callback invocation and propagates it immediately without
// populating any cache layer, the Go-idiomatic rendering of "throw an
// interrupt exception that unwinds without caching partial results".
var ErrInterrupt = hsdderrors.Wrap(hsdderrors.CodeInterrupt, "evaluation interrupted by caller", nil)

// EvalError wraps a shape-mismatch raised during homomorphism evaluation
// (typically a *sdd.TopError) with the chain of enclosing homomorphisms, for
// diagnostics. Chain is outermost-first: Chain[0] is the top-level
// homomorphism and the last element is the one whose evaluation raised the
// error.
type EvalError struct {
	Operand *sdd.SDD
	Chain   []*Hom
	Err     error
}

// Error satisfies the error interface.
func (e *EvalError) Error() string {
	return "hom: evaluation failed: " + e.Err.Error()
}

// Unwrap exposes the underlying cause (typically a *sdd.TopError), so
// errors.As(err, &topErr) reaches through an EvalError.
func (e *EvalError) Unwrap() error { return e.Err }

// Is reports whether target is the engine's evaluation-error sentinel, so
// errors.Is(err, hsdderrors.ErrEvalError) succeeds without needing to unwrap
// all the way to the underlying *sdd.TopError's own code.
func (e *EvalError) Is(target error) bool {
	return target == hsdderrors.ErrEvalError
}

func evalError(operand *sdd.SDD, chain []*Hom, err error) *EvalError {
	cp := make([]*Hom, len(chain))
	copy(cp, chain)
	return &EvalError{Operand: operand, Chain: cp, Err: err}
}

func invariantViolation(msg string) error {
	return hsdderrors.Wrap(hsdderrors.CodeInvariantViolation, msg, nil)
}
