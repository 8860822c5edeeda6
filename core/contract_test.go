package core

import (
	"errors"
	"testing"

	"bioimage-transform/bioimage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	u8, _ := bioimage.FromRows(bioimage.Uint8, [][]float64{{1, 2}})
	f64, _ := bioimage.FromRows(bioimage.Float64, [][]float64{{1, 2}})

	tests := []struct {
		name     string
		contract Contract
		in       *bioimage.Array
		inputErr bool
	}{
		{"unconstrained", Contract{}, u8, false},
		{"matching input", Contract{Input: bioimage.Float64}, f64, false},
		{"mismatching input", Contract{Input: bioimage.Float64}, u8, true},
		{"output only", Contract{Output: bioimage.Bool}, u8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contract.CheckInput("smooth_gaussian", tt.in)
			if !tt.inputErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContract)

			var ce *ContractError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "smooth_gaussian", ce.Transform)
			assert.Equal(t, "input", ce.Stage)
			assert.Equal(t, bioimage.Float64, ce.Want)
			assert.Equal(t, bioimage.Uint8, ce.Got)
		})
	}
}

func TestContractOutput(t *testing.T) {
	u8, _ := bioimage.FromRows(bioimage.Uint8, [][]float64{{1}})
	err := Contract{Output: bioimage.Bool}.CheckOutput("threshold_otsu", u8)
	assert.ErrorIs(t, err, ErrContract)
	assert.Contains(t, err.Error(), "output")
}

func TestErrorKindsAreDistinct(t *testing.T) {
	domain := &DomainError{Transform: "equalize_adaptive_clahe", Reason: "cannot equalize a constant image"}
	assert.ErrorIs(t, domain, ErrDomain)
	assert.NotErrorIs(t, domain, ErrContract)
	assert.Equal(t, "equalize_adaptive_clahe: cannot equalize a constant image", domain.Error())

	contract := &ContractError{Transform: "invert", Stage: "input", Want: bioimage.Bool, Got: bioimage.Float64}
	assert.NotErrorIs(t, contract, ErrDomain)
}
