package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-optimizer/internal/modules/marketdata"
)

// PriceRefreshJob keeps the price cache warm so optimization runs see the
// latest closes without waiting on the provider.
type PriceRefreshJob struct {
	data    *marketdata.Service
	symbols []string
	period  string
	log     zerolog.Logger
}

// NewPriceRefreshJob creates the nightly price refresh job.
func NewPriceRefreshJob(data *marketdata.Service, symbols []string, period string, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		data:    data,
		symbols: symbols,
		period:  period,
		log:     log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name implements Job.
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run implements Job.
func (j *PriceRefreshJob) Run() error {
	j.log.Info().Strs("symbols", j.symbols).Str("period", j.period).Msg("Refreshing prices")
	return j.data.Refresh(j.symbols, j.period)
}
