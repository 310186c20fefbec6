package marketdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
)

const dateLayout = "2006-01-02"

// Store caches daily adjusted closes in sqlite so repeated runs do not
// refetch the same window from the provider.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a price store over an open database.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "price_store").Logger(),
	}
}

// SavePrices upserts the observations for one symbol.
func (s *Store) SavePrices(symbol string, points []optimization.PricePoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO prices (symbol, date, adj_close)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET adj_close = excluded.adj_close`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(symbol, p.Date.UTC().Format(dateLayout), p.AdjClose); err != nil {
			return fmt.Errorf("failed to insert price for %s on %s: %w",
				symbol, p.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}

	s.log.Debug().Str("symbol", symbol).Int("count", len(points)).Msg("Saved prices")
	return nil
}

// Prices returns the cached observations for a symbol in date order.
func (s *Store) Prices(symbol string) ([]optimization.PricePoint, error) {
	rows, err := s.db.Query(`
		SELECT date, adj_close
		FROM prices
		WHERE symbol = ?
		ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []optimization.PricePoint
	for rows.Next() {
		var dateStr string
		var adjClose float64
		if err := rows.Scan(&dateStr, &adjClose); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}

		date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price date %q: %w", dateStr, err)
		}

		points = append(points, optimization.PricePoint{Date: date, AdjClose: adjClose})
	}
	return points, rows.Err()
}

// Count returns how many observations are cached for a symbol.
func (s *Store) Count(symbol string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM prices WHERE symbol = ?`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count prices for %s: %w", symbol, err)
	}
	return count, nil
}
