// Package server exposes the simulation engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brfinance/finsim/internal/indexes"
	"github.com/brfinance/finsim/internal/metrics"
	"github.com/brfinance/finsim/internal/simulation"
	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/schedule"
)

type handler struct {
	logger         *zap.Logger
	provider       *indexes.Provider
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, provider *indexes.Provider, maxRequestSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		provider = indexes.NewProvider(logger, "", nil)
	}
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		provider:       provider,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/simulate", h.handleSimulate)
	r.Get("/api/indexes/{series}", h.handleIndexSeries)
	r.Get("/api/version", h.handleVersion)
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// simulateRequest is simulation.Parameters plus the name of a correction
// series to resolve before the run.
type simulateRequest struct {
	simulation.Parameters
	CorrectionIndex string `json:"correctionIndex,omitempty"`
}

type simulateResponse struct {
	*simulation.Result
	Warnings []string `json:"warnings,omitempty"`
	Duration string   `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req simulateRequest
	body := http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	params := req.Parameters
	warnings := simulation.Warnings(params)

	// Resolve the correction series before the engine runs; a fetch failure
	// degrades to an uncorrected schedule rather than failing the request.
	if req.CorrectionIndex != "" && params.Kind == simulation.KindLoan {
		series, err := h.provider.Series(r.Context(), req.CorrectionIndex, params.StartDate, params.TermMonths)
		if err != nil {
			metrics.IndexFetches.WithLabelValues(req.CorrectionIndex, "error").Inc()
			h.logger.Warn("index fetch failed; proceeding without correction",
				zap.String("op", "server.handleSimulate"),
				zap.String("series", req.CorrectionIndex),
				zap.Error(err),
			)
			warnings = append(warnings, "correction index unavailable; schedule computed without correction")
		} else {
			metrics.IndexFetches.WithLabelValues(req.CorrectionIndex, "ok").Inc()
			params.Correction = series
		}
	}

	result, err := simulation.Run(h.logger, params)
	if err != nil {
		metrics.Simulations.WithLabelValues(string(params.Kind), "error").Inc()
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	elapsed := time.Since(start)
	metrics.Simulations.WithLabelValues(string(params.Kind), "ok").Inc()
	metrics.SimulationDuration.Observe(elapsed.Seconds())

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Result:   result,
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleIndexSeries(w http.ResponseWriter, r *http.Request) {
	series := chi.URLParam(r, "series")
	if !indexes.KnownSeries(series) {
		h.writeError(w, http.StatusNotFound, "unknown correction index "+series)
		return
	}

	startDate := r.URL.Query().Get("start")
	if _, err := time.Parse(constants.DateTimeLayout, startDate); err != nil {
		h.writeError(w, http.StatusBadRequest, "start must be a YYYY-MM date")
		return
	}
	months, err := strconv.Atoi(r.URL.Query().Get("months"))
	if err != nil || months <= 0 {
		h.writeError(w, http.StatusBadRequest, "months must be a positive integer")
		return
	}

	// Past this point failures are upstream, not caller input.
	data, err := h.provider.Series(r.Context(), series, startDate, months)
	if err != nil {
		metrics.IndexFetches.WithLabelValues(series, "error").Inc()
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.IndexFetches.WithLabelValues(series, "ok").Inc()

	h.writeJSON(w, http.StatusOK, struct {
		Series string               `json:"series"`
		Values schedule.IndexSeries `json:"values"`
	}{Series: series, Values: data})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, struct {
		Version string `json:"version"`
	}{Version: h.version})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
