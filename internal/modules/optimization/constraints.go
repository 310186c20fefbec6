package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Constraint is one condition a weight vector must satisfy. All constraints
// in a ConstraintSet are conjunctive; duplicates of the same kind are
// permitted and all must hold, so the most restrictive wins implicitly.
type Constraint interface {
	// Satisfied reports whether the weight vector meets the constraint.
	Satisfied(weights []float64) bool
}

// WeightSum bounds the total allocation: Min <= sum of weights <= Max.
type WeightSum struct {
	Min float64
	Max float64
}

func (c WeightSum) Satisfied(weights []float64) bool {
	sum := floats.Sum(weights)
	return sum >= c.Min && sum <= c.Max
}

// LongOnly requires every weight to be non-negative (no short positions).
type LongOnly struct{}

func (LongOnly) Satisfied(weights []float64) bool {
	for _, w := range weights {
		if w < 0 {
			return false
		}
	}
	return true
}

// Box applies the same scalar bounds to every asset: Min <= w <= Max.
type Box struct {
	Min float64
	Max float64
}

func (c Box) Satisfied(weights []float64) bool {
	for _, w := range weights {
		if w < c.Min || w > c.Max {
			return false
		}
	}
	return true
}

// BoxPerAsset applies individual bounds per asset, aligned with the
// ConstraintSet's symbol order. Use math.Inf for unbounded sides.
type BoxPerAsset struct {
	Min []float64
	Max []float64
}

func (c BoxPerAsset) Satisfied(weights []float64) bool {
	if len(c.Min) != len(weights) || len(c.Max) != len(weights) {
		return false
	}
	for i, w := range weights {
		if w < c.Min[i] || w > c.Max[i] {
			return false
		}
	}
	return true
}

// ConstraintSet holds an ordered, append-only collection of constraints for
// a fixed set of assets.
type ConstraintSet struct {
	symbols     []string
	constraints []Constraint
}

// NewConstraintSet creates a constraint set over the given symbols.
func NewConstraintSet(symbols []string, constraints ...Constraint) *ConstraintSet {
	return &ConstraintSet{
		symbols:     append([]string(nil), symbols...),
		constraints: append([]Constraint(nil), constraints...),
	}
}

// Add appends a constraint. Evaluation order does not matter; all
// constraints must hold simultaneously.
func (s *ConstraintSet) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// NumAssets returns the number of assets the set constrains.
func (s *ConstraintSet) NumAssets() int {
	return len(s.symbols)
}

// Symbols returns the asset symbols in order.
func (s *ConstraintSet) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// Constraints returns a copy of the constraint list.
func (s *ConstraintSet) Constraints() []Constraint {
	return append([]Constraint(nil), s.constraints...)
}

// IsFeasible reports whether the weight vector satisfies every constraint.
// A vector of the wrong length is never feasible.
func (s *ConstraintSet) IsFeasible(weights []float64) bool {
	if len(weights) != len(s.symbols) {
		return false
	}
	for _, c := range s.constraints {
		if !c.Satisfied(weights) {
			return false
		}
	}
	return true
}

// Validate detects constraint sets that are contradictory without sampling:
// the sum of all per-asset minimum box bounds exceeding the weight-sum
// maximum, the sum of all per-asset maximum box bounds falling below the
// weight-sum minimum, or weight-sum constraints that exclude each other.
// It must run once before any search begins.
func (s *ConstraintSet) Validate() error {
	for _, c := range s.constraints {
		if b, ok := c.(BoxPerAsset); ok {
			if len(b.Min) != len(s.symbols) || len(b.Max) != len(s.symbols) {
				return fmt.Errorf("%w: per-asset box has %d/%d bounds for %d assets",
					ErrInvalidArgument, len(b.Min), len(b.Max), len(s.symbols))
			}
		}
	}

	sumMin, sumMax, hasSum := s.sumBounds()
	if !hasSum {
		return nil
	}
	if sumMin > sumMax {
		return fmt.Errorf("%w: weight-sum constraints leave no valid total (min %.4f > max %.4f)",
			ErrInfeasibleConstraintSet, sumMin, sumMax)
	}

	lo, hi := s.assetBounds()

	loSum := floats.Sum(lo)
	if !math.IsInf(loSum, -1) && loSum > sumMax {
		return fmt.Errorf("%w: per-asset minimum bounds sum to %.4f, above the weight-sum maximum %.4f",
			ErrInfeasibleConstraintSet, loSum, sumMax)
	}

	hiSum := floats.Sum(hi)
	if !math.IsInf(hiSum, 1) && hiSum < sumMin {
		return fmt.Errorf("%w: per-asset maximum bounds sum to %.4f, below the weight-sum minimum %.4f",
			ErrInfeasibleConstraintSet, hiSum, sumMin)
	}

	return nil
}

// assetBounds combines every box and long-only constraint into effective
// per-asset bounds. Unconstrained sides are -Inf / +Inf.
func (s *ConstraintSet) assetBounds() (lo, hi []float64) {
	n := len(s.symbols)
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := range lo {
		lo[i] = math.Inf(-1)
		hi[i] = math.Inf(1)
	}

	for _, c := range s.constraints {
		switch b := c.(type) {
		case LongOnly:
			for i := range lo {
				lo[i] = math.Max(lo[i], 0)
			}
		case Box:
			for i := range lo {
				lo[i] = math.Max(lo[i], b.Min)
				hi[i] = math.Min(hi[i], b.Max)
			}
		case BoxPerAsset:
			for i := range lo {
				if i < len(b.Min) {
					lo[i] = math.Max(lo[i], b.Min[i])
				}
				if i < len(b.Max) {
					hi[i] = math.Min(hi[i], b.Max[i])
				}
			}
		}
	}

	return lo, hi
}

// sumBounds returns the most restrictive weight-sum window, if any
// WeightSum constraint is present.
func (s *ConstraintSet) sumBounds() (min, max float64, ok bool) {
	min = math.Inf(-1)
	max = math.Inf(1)
	for _, c := range s.constraints {
		if ws, isSum := c.(WeightSum); isSum {
			min = math.Max(min, ws.Min)
			max = math.Min(max, ws.Max)
			ok = true
		}
	}
	return min, max, ok
}

// hasAssetBounds reports whether any box or long-only constraint is present,
// which switches the sampler to bound-aware draws.
func (s *ConstraintSet) hasAssetBounds() bool {
	for _, c := range s.constraints {
		switch c.(type) {
		case LongOnly, Box, BoxPerAsset:
			return true
		}
	}
	return false
}

// normalizationTarget is the total allocation candidate draws are scaled to:
// 1.0, clamped into the weight-sum window when one is declared.
func (s *ConstraintSet) normalizationTarget() float64 {
	min, max, ok := s.sumBounds()
	if !ok {
		return 1.0
	}
	target := 1.0
	if !math.IsInf(min, -1) && target < min {
		target = min
	}
	if !math.IsInf(max, 1) && target > max {
		target = max
	}
	return target
}
