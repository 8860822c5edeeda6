package core

import "bioimage-transform/bioimage"

// Contract declares the dtypes a transformation requires. A zero field
// leaves that side unconstrained.
type Contract struct {
	Input  bioimage.DType
	Output bioimage.DType
}

// CheckInput validates a before the algorithm runs.
func (c Contract) CheckInput(transform string, a *bioimage.Array) error {
	return check(transform, "input", c.Input, a)
}

// CheckOutput validates the array an algorithm produced.
func (c Contract) CheckOutput(transform string, a *bioimage.Array) error {
	return check(transform, "output", c.Output, a)
}

func check(transform, stage string, want bioimage.DType, a *bioimage.Array) error {
	if want == 0 || a.DType() == want {
		return nil
	}
	return &ContractError{Transform: transform, Stage: stage, Want: want, Got: a.DType()}
}
