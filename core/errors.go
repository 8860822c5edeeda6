package core

import (
	"errors"
	"fmt"

	"bioimage-transform/bioimage"
)

var (
	// ErrContract is matched by every *ContractError.
	ErrContract = errors.New("dtype contract violation")
	// ErrDomain is matched by every *DomainError.
	ErrDomain = errors.New("domain precondition failed")
	// ErrInvariant marks a postcondition that did not hold.
	ErrInvariant = errors.New("invariant violated")
)

// ContractError reports an array whose dtype does not match the one a
// transformation declared for its input or output.
type ContractError struct {
	Transform string
	Stage     string // "input" or "output"
	Want      bioimage.DType
	Got       bioimage.DType
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s dtype %s does not match contract dtype %s", e.Transform, e.Stage, e.Got, e.Want)
}

func (e *ContractError) Is(target error) bool { return target == ErrContract }

// DomainError reports input the algorithm has no meaningful answer for.
type DomainError struct {
	Transform string
	Reason    string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Transform, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }
