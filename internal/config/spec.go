package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
)

// bounds is a {min, max} pair in the spec file.
type bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// specFile is the YAML shape of an optimization run spec.
type specFile struct {
	Symbols    []string `yaml:"symbols"`
	Period     string   `yaml:"period"`
	ReturnType string   `yaml:"return_type"`
	Objective  struct {
		Measure   string `yaml:"measure"`
		Direction string `yaml:"direction"`
	} `yaml:"objective"`
	Trials      int   `yaml:"trials"`
	Seed        int64 `yaml:"seed"`
	Workers     int   `yaml:"workers"`
	Constraints struct {
		WeightSum    *bounds           `yaml:"weight_sum"`
		LongOnly     *bool             `yaml:"long_only"`
		Box          *bounds           `yaml:"box"`
		BoxPerSymbol map[string]bounds `yaml:"box_per_symbol"`
	} `yaml:"constraints"`
}

// LoadSpec reads an optimization run spec from a YAML file, applies
// defaults, validates it, and builds the constraint list in declaration
// order: weight-sum, long-only, uniform box, per-symbol box.
func LoadSpec(path string) (optimization.RunSpec, error) {
	var spec optimization.RunSpec

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read spec: %w", err)
	}

	var file specFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return spec, fmt.Errorf("parse spec: %w", err)
	}

	// Defaults
	if file.Period == "" {
		file.Period = "1y"
	}
	if file.ReturnType == "" {
		file.ReturnType = string(optimization.ReturnLog)
	}
	if file.Objective.Measure == "" {
		file.Objective.Measure = "stddev"
	}
	if file.Trials == 0 {
		file.Trials = 10000
	}
	if file.Seed == 0 {
		file.Seed = 42
	}
	if file.Workers == 0 {
		file.Workers = 1
	}
	if file.Constraints.WeightSum == nil {
		file.Constraints.WeightSum = &bounds{Min: 0.99, Max: 1.01}
	}
	if file.Constraints.LongOnly == nil {
		longOnly := true
		file.Constraints.LongOnly = &longOnly
	}

	// Validation
	if len(file.Symbols) == 0 {
		return spec, fmt.Errorf("spec: symbols is required")
	}
	if file.Trials <= 0 {
		return spec, fmt.Errorf("spec: trials must be positive, got %d", file.Trials)
	}
	switch file.ReturnType {
	case string(optimization.ReturnLog), string(optimization.ReturnSimple):
	default:
		return spec, fmt.Errorf("spec: return_type must be log or simple, got %q", file.ReturnType)
	}
	switch file.Objective.Direction {
	case "", "minimize":
	default:
		return spec, fmt.Errorf("spec: only minimize is supported, got direction %q", file.Objective.Direction)
	}

	symbolSet := make(map[string]int, len(file.Symbols))
	for i, s := range file.Symbols {
		if _, dup := symbolSet[s]; dup {
			return spec, fmt.Errorf("spec: duplicate symbol %s", s)
		}
		symbolSet[s] = i
	}
	for s := range file.Constraints.BoxPerSymbol {
		if _, ok := symbolSet[s]; !ok {
			return spec, fmt.Errorf("spec: box_per_symbol references unknown symbol %s", s)
		}
	}

	var constraints []optimization.Constraint
	if ws := file.Constraints.WeightSum; ws != nil {
		constraints = append(constraints, optimization.WeightSum{Min: ws.Min, Max: ws.Max})
	}
	if *file.Constraints.LongOnly {
		constraints = append(constraints, optimization.LongOnly{})
	}
	if box := file.Constraints.Box; box != nil {
		constraints = append(constraints, optimization.Box{Min: box.Min, Max: box.Max})
	}
	if len(file.Constraints.BoxPerSymbol) > 0 {
		min := make([]float64, len(file.Symbols))
		max := make([]float64, len(file.Symbols))
		for i := range min {
			min[i] = math.Inf(-1)
			max[i] = math.Inf(1)
		}
		for s, b := range file.Constraints.BoxPerSymbol {
			min[symbolSet[s]] = b.Min
			max[symbolSet[s]] = b.Max
		}
		constraints = append(constraints, optimization.BoxPerAsset{Min: min, Max: max})
	}

	return optimization.RunSpec{
		Symbols:     file.Symbols,
		Period:      file.Period,
		ReturnType:  optimization.ReturnType(file.ReturnType),
		Objective:   file.Objective.Measure,
		Constraints: constraints,
		Trials:      file.Trials,
		Seed:        file.Seed,
		Workers:     file.Workers,
	}, nil
}
