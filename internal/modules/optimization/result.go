package optimization

import "time"

// CorrelationPair flags two assets whose return series are highly
// correlated, as a diagnostic hint that diversification between them is
// limited.
type CorrelationPair struct {
	Symbol1     string  `json:"symbol_1"`
	Symbol2     string  `json:"symbol_2"`
	Correlation float64 `json:"correlation"`
}

// Result is the immutable outcome of one optimization run: the best weight
// vector found, its objective value, and diagnostics for judging whether
// the optimizer beat holding any single asset.
type Result struct {
	Timestamp      time.Time          `json:"timestamp"`
	ObjectiveName  string             `json:"objective"`
	ObjectiveValue float64            `json:"objective_value"`
	Trials         int                `json:"trials"` // evaluated, including failed draws
	FailedDraws    int                `json:"failed_draws"`

	symbols        []string
	weights        map[string]float64
	standaloneRisk map[string]float64
	correlations   []CorrelationPair
}

// Symbols returns the asset symbols in optimization order.
func (r *Result) Symbols() []string {
	return append([]string(nil), r.symbols...)
}

// Weights returns the best weight allocation found, keyed by symbol.
func (r *Result) Weights() map[string]float64 {
	out := make(map[string]float64, len(r.weights))
	for k, v := range r.weights {
		out[k] = v
	}
	return out
}

// Weight returns the optimized weight for one symbol.
func (r *Result) Weight(symbol string) float64 {
	return r.weights[symbol]
}

// StandaloneRisk returns each asset's own risk (the objective applied to a
// 100% allocation in that asset), computed once per run as a baseline.
func (r *Result) StandaloneRisk() map[string]float64 {
	out := make(map[string]float64, len(r.standaloneRisk))
	for k, v := range r.standaloneRisk {
		out[k] = v
	}
	return out
}

// HighCorrelations returns asset pairs whose return correlation exceeded
// the reporting threshold.
func (r *Result) HighCorrelations() []CorrelationPair {
	return append([]CorrelationPair(nil), r.correlations...)
}

// BeatsStandalone reports whether the optimized portfolio risk is strictly
// lower than the named asset's standalone risk. Ties count as "not lower".
func (r *Result) BeatsStandalone(symbol string) bool {
	risk, ok := r.standaloneRisk[symbol]
	if !ok {
		return false
	}
	return r.ObjectiveValue < risk
}

// StandaloneComparison returns the BeatsStandalone verdict for every asset.
func (r *Result) StandaloneComparison() map[string]bool {
	out := make(map[string]bool, len(r.symbols))
	for _, s := range r.symbols {
		out[s] = r.BeatsStandalone(s)
	}
	return out
}
