package optimization

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// resultCache stores the last in-process optimization result.
type resultCache struct {
	mu          sync.RWMutex
	lastResult  *Result
	lastUpdated time.Time
}

// Handler handles HTTP requests for the optimization module.
type Handler struct {
	service *Service
	repo    *RunRepository
	spec    RunSpec // configured default run spec
	cache   *resultCache
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler.
func NewHandler(service *Service, repo *RunRepository, spec RunSpec, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		spec:    spec,
		cache:   &resultCache{},
		log:     log.With().Str("component", "optimizer_handler").Logger(),
	}
}

// Routes mounts the optimizer endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleGetStatus)
	r.Post("/run", h.HandleRun)
	r.Get("/runs", h.HandleListRuns)
}

// runRequest optionally overrides the search budget of the configured spec.
type runRequest struct {
	Trials  *int   `json:"trials"`
	Seed    *int64 `json:"seed"`
	Workers *int   `json:"workers"`
}

// HandleGetStatus handles GET /api/optimizer - configured spec and last run.
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ready",
		"spec": map[string]interface{}{
			"symbols":     h.spec.Symbols,
			"period":      h.spec.Period,
			"return_type": h.spec.ReturnType,
			"objective":   h.spec.Objective,
			"trials":      h.spec.Trials,
			"seed":        h.spec.Seed,
			"workers":     h.spec.Workers,
		},
		"last_run": nil,
	}

	h.cache.mu.RLock()
	if h.cache.lastResult != nil {
		response["last_run"] = resultToDict(h.cache.lastResult)
		response["last_run_time"] = h.cache.lastUpdated.Format(time.RFC3339)
	}
	h.cache.mu.RUnlock()

	if response["last_run"] == nil && h.repo != nil {
		record, err := h.repo.LatestRun()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to load latest run")
		} else if record != nil {
			response["last_run"] = record
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleRun handles POST /api/optimizer/run - runs the optimizer and
// returns the result.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	spec := h.spec

	if r.Body != nil && r.ContentLength != 0 {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Trials != nil {
			spec.Trials = *req.Trials
		}
		if req.Seed != nil {
			spec.Seed = *req.Seed
		}
		if req.Workers != nil {
			spec.Workers = *req.Workers
		}
	}

	h.log.Info().Int("trials", spec.Trials).Int64("seed", spec.Seed).Msg("Running portfolio optimization")

	result, err := h.service.Run(spec)
	if err != nil {
		h.log.Error().Err(err).Msg("Optimization failed")
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.cache.mu.Lock()
	h.cache.lastResult = result
	h.cache.lastUpdated = time.Now()
	h.cache.mu.Unlock()

	h.writeJSON(w, http.StatusOK, resultToDict(result))
}

// HandleListRuns handles GET /api/optimizer/runs - persisted run history.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		h.writeJSON(w, http.StatusOK, []RunRecord{})
		return
	}

	records, err := h.repo.ListRuns(50)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if records == nil {
		records = []RunRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// statusForError maps the optimization error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInfeasibleConstraintSet),
		errors.Is(err, ErrInsufficientData),
		errors.Is(err, ErrMisalignedSeries),
		errors.Is(err, ErrDegenerateSeries):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoFeasibleSolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDataSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func resultToDict(result *Result) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":         result.Timestamp.Format(time.RFC3339),
		"objective":         result.ObjectiveName,
		"objective_value":   result.ObjectiveValue,
		"trials":            result.Trials,
		"failed_draws":      result.FailedDraws,
		"weights":           result.Weights(),
		"standalone_risk":   result.StandaloneRisk(),
		"beats_standalone":  result.StandaloneComparison(),
		"high_correlations": result.HighCorrelations(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
