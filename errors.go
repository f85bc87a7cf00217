package lattice

import (
	"errors"
	"fmt"
)

// Sentinel categories for errors.Is checks. Every structural failure in the
// core unwraps to exactly one of these.
var (
	// ErrConfiguration marks unsupported option combinations, such as
	// enabling a scrollbar on a horizontal layout.
	ErrConfiguration = errors.New("lattice: configuration error")

	// ErrInvariant marks violations of tree invariants, such as attaching
	// a second child to a panel.
	ErrInvariant = errors.New("lattice: invariant violation")

	// ErrPrecondition marks operations called in the wrong lifecycle
	// state, such as focusing a despawned node.
	ErrPrecondition = errors.New("lattice: precondition violation")
)

// ConfigurationError reports an unsupported combination of node options.
// The failing call leaves prior state unchanged.
type ConfigurationError struct {
	Op     string // operation that was rejected
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lattice: %s: %s", e.Op, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvariantViolation reports a structural mistake in tree manipulation.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("lattice: %s: %s", e.Op, e.Detail)
}

func (e *InvariantViolation) Unwrap() error { return ErrInvariant }

// PreconditionViolation reports an operation invoked in the wrong
// lifecycle state.
type PreconditionViolation struct {
	Op     string
	Detail string
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("lattice: %s: %s", e.Op, e.Detail)
}

func (e *PreconditionViolation) Unwrap() error { return ErrPrecondition }
