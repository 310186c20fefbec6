package optimization

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RunRecord is one persisted optimization run.
type RunRecord struct {
	ID             int64              `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	Seed           int64              `json:"seed"`
	Trials         int                `json:"trials"`
	FailedDraws    int                `json:"failed_draws"`
	ReturnType     string             `json:"return_type"`
	Objective      string             `json:"objective"`
	ObjectiveValue float64            `json:"objective_value"`
	Symbols        []string           `json:"symbols"`
	Weights        map[string]float64 `json:"weights"`
}

// RunRepository stores optimization run history.
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("component", "run_repository").Logger(),
	}
}

// SaveRun persists a completed run and returns its row ID.
func (r *RunRepository) SaveRun(spec RunSpec, result *Result) (int64, error) {
	symbolsJSON, err := json.Marshal(result.Symbols())
	if err != nil {
		return 0, fmt.Errorf("failed to encode symbols: %w", err)
	}
	weightsJSON, err := json.Marshal(result.Weights())
	if err != nil {
		return 0, fmt.Errorf("failed to encode weights: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO optimization_runs
			(created_at, seed, trials, failed_draws, return_type, objective, objective_value, symbols, weights)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Timestamp.Format(time.RFC3339),
		spec.Seed,
		result.Trials,
		result.FailedDraws,
		string(spec.ReturnType),
		result.ObjectiveName,
		result.ObjectiveValue,
		string(symbolsJSON),
		string(weightsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	r.log.Debug().Int64("run_id", id).Msg("Saved optimization run")
	return id, nil
}

// LatestRun returns the most recent run, or nil when none exist.
func (r *RunRepository) LatestRun() (*RunRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, created_at, seed, trials, failed_draws, return_type, objective, objective_value, symbols, weights
		FROM optimization_runs
		ORDER BY id DESC
		LIMIT 1`)

	record, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return record, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *RunRepository) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, created_at, seed, trials, failed_draws, return_type, objective, objective_value, symbols, weights
		FROM optimization_runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanRun(scan func(dest ...any) error) (*RunRecord, error) {
	var record RunRecord
	var createdAt, symbolsJSON, weightsJSON string

	err := scan(
		&record.ID,
		&createdAt,
		&record.Seed,
		&record.Trials,
		&record.FailedDraws,
		&record.ReturnType,
		&record.Objective,
		&record.ObjectiveValue,
		&symbolsJSON,
		&weightsJSON,
	)
	if err != nil {
		return nil, err
	}

	record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(symbolsJSON), &record.Symbols); err != nil {
		return nil, fmt.Errorf("failed to decode symbols: %w", err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &record.Weights); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	return &record, nil
}
