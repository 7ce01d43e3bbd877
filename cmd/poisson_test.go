package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/cocteautwins/hypre/InputParameters"
	"github.com/cocteautwins/hypre/ssamg"
)

func TestSolverInputParameters(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Case
Tol: 1.e-8
MaxIterations: 100
RelaxType: RedBlackGS # Can be Jacobi or WeightedJacobi
NumPreRelax: 2
NumPostRelax: 2
ZeroGuess: true
NumRanks: 4
Parts:
  - Size: [32, 32, 1]
    Spacing: [1., 1., 1.]
  - Size: [16, 16, 16]
    Spacing: [0.5, 0.5, 0.5]
`)
	var input InputParameters.SolverParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, input.Tol, 1.e-8)
	assert.Equal(t, input.MaxIterations, 100)
	assert.Equal(t, relaxFromString(input.RelaxType), ssamg.RelaxRedBlackGS)
	assert.Equal(t, len(input.Parts), 2)
	// Check the 3D part size and its spacing
	assert.Equal(t, input.Parts[1].Size, [3]int{16, 16, 16})
	assert.Equal(t, input.Parts[1].Spacing, [3]float64{0.5, 0.5, 0.5})
	input.Print()
	assert.Equal(t, input.NumRanks, 4)
}
