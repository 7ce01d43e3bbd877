package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// One structured part of the composite grid
type PartSpec struct {
	Size    [3]int     `yaml:"Size"`
	Spacing [3]float64 `yaml:"Spacing"`
}

// Parameters obtained from the YAML input file
type SolverParameters struct {
	Title          string     `yaml:"Title"`
	Tol            float64    `yaml:"Tol"`
	MaxIterations  int        `yaml:"MaxIterations"`
	MaxLevels      int        `yaml:"MaxLevels"`
	RelaxType      string     `yaml:"RelaxType"` // Jacobi, WeightedJacobi or RedBlackGS
	RelaxWeight    float64    `yaml:"RelaxWeight"`
	NumPreRelax    int        `yaml:"NumPreRelax"`
	NumPostRelax   int        `yaml:"NumPostRelax"`
	NumCoarseRelax int        `yaml:"NumCoarseRelax"`
	ZeroGuess      bool       `yaml:"ZeroGuess"`
	RelChange      bool       `yaml:"RelChange"`
	PrintLevel     int        `yaml:"PrintLevel"`
	Logging        int        `yaml:"Logging"`
	NumRanks       int        `yaml:"NumRanks"`
	Parts          []PartSpec `yaml:"Parts"`
}

func (sp *SolverParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, sp)
}

func (sp *SolverParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("%8.2e\t\t= Tol\n", sp.Tol)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", sp.MaxIterations)
	fmt.Printf("[%d]\t\t\t= MaxLevels\n", sp.MaxLevels)
	fmt.Printf("[%s]\t\t= RelaxType\n", sp.RelaxType)
	fmt.Printf("%8.5f\t\t= RelaxWeight\n", sp.RelaxWeight)
	fmt.Printf("[%d/%d/%d]\t\t= Pre/Post/Coarse sweeps\n",
		sp.NumPreRelax, sp.NumPostRelax, sp.NumCoarseRelax)
	fmt.Printf("[%d]\t\t\t= NumRanks\n", sp.NumRanks)
	for i, p := range sp.Parts {
		fmt.Printf("Parts[%d] = size %v spacing %v\n", i, p.Size, p.Spacing)
	}
}
