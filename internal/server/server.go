package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/growth-forecast/internal/cache"
	"github.com/iwvelando/growth-forecast/internal/config"
	"github.com/iwvelando/growth-forecast/internal/forecast"
	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/datetime"
	"github.com/iwvelando/growth-forecast/pkg/growth"
	"github.com/iwvelando/growth-forecast/pkg/loans"
	"github.com/iwvelando/growth-forecast/pkg/output"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Options tunes the handler built by NewHandler. Zero values select defaults.
type Options struct {
	MaxUploadSize     int64
	Version           string
	Cache             cache.Store
	RequestsPerSecond float64
	Burst             int
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         cache.Store
	engine        *growth.Engine
	loans         *loans.AmortizationScheduleGenerator
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = constants.DefaultRateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = constants.DefaultRateBurst
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		version:       version,
		cache:         opts.Cache,
		engine:        growth.NewEngine(logger),
		loans:         loans.NewAmortizationScheduleGenerator(logger),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(h.rateLimitMiddleware(limiter))

	r.Route("/api", func(r chi.Router) {
		r.Post("/project", h.handleProject)
		r.Post("/goal", h.handleGoal)
		r.Post("/milestone", h.handleMilestone)
		r.Post("/mortgage", h.handleMortgage)
		r.Post("/forecast", h.handleForecast)
		r.Get("/version", h.handleVersion)
		r.Get("/frequencies", h.handleFrequencies)
	})

	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				h.requestLogger(r).Warn("rate limit exceeded",
					zap.String("op", "server.rateLimitMiddleware"),
					zap.String("path", r.URL.Path),
				)
				h.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: http.StatusText(http.StatusTooManyRequests)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) requestLogger(r *http.Request) *zap.Logger {
	if requestID, ok := r.Context().Value(requestIDContextKey).(string); ok {
		return h.logger.With(zap.String("requestID", requestID))
	}
	return h.logger
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type goalResponse struct {
	growth.GoalResult
	ChartSeries []growth.ChartPoint `json:"chartSeries,omitempty"`
}

type milestoneRequest struct {
	Input     growth.ScheduleInput `json:"input"`
	Targets   []float64            `json:"targets"`
	StartDate string               `json:"startDate,omitempty"`
}

type milestoneResponse struct {
	EndingBalance float64                 `json:"endingBalance"`
	Milestones    []forecast.MilestoneHit `json:"milestones"`
}

type frequencyInfo struct {
	Name           compounding.Frequency `json:"name"`
	PeriodsPerYear int                   `json:"periodsPerYear,omitempty"`
	Continuous     bool                  `json:"continuous,omitempty"`
}

type forecastResponse struct {
	Forecasts []forecast.Forecast `json:"forecasts"`
	Mortgages []loans.Schedule    `json:"mortgages,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
	CSV       string              `json:"csv"`
	Duration  string              `json:"duration"`
}

// computeFunc returns the response status and payload for a request.
type computeFunc func() (int, interface{})

func (h *handler) handleProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProject"
	var input growth.ScheduleInput
	if !h.decodeJSON(w, r, &input, op) {
		return
	}

	h.respondCached(w, r, "project", input, op, func() (int, interface{}) {
		out := h.engine.Project(input)
		if !out.Valid {
			return http.StatusUnprocessableEntity, errorResponse{Error: "invalid projection input", Problems: out.Problems}
		}
		return http.StatusOK, out
	})
}

func (h *handler) handleGoal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGoal"
	var query growth.GoalQuery
	if !h.decodeJSON(w, r, &query, op) {
		return
	}

	h.respondCached(w, r, "goal", query, op, func() (int, interface{}) {
		result := h.engine.SolveRequiredContribution(query)
		if !result.Valid {
			return http.StatusUnprocessableEntity, errorResponse{Error: "invalid goal query", Problems: result.Problems}
		}
		response := goalResponse{GoalResult: result}
		if projection := h.engine.Project(query.ProjectionFor(result)); projection.Valid {
			response.ChartSeries = projection.ChartSeries
		}
		return http.StatusOK, response
	})
}

func (h *handler) handleMilestone(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMilestone"
	var request milestoneRequest
	if !h.decodeJSON(w, r, &request, op) {
		return
	}
	if len(request.Targets) == 0 {
		h.respondError(w, r, http.StatusBadRequest, "at least one target is required", op)
		return
	}

	h.respondCached(w, r, "milestone", request, op, func() (int, interface{}) {
		out := h.engine.Project(request.Input)
		if !out.Valid {
			return http.StatusUnprocessableEntity, errorResponse{Error: "invalid projection input", Problems: out.Problems}
		}
		labels, err := datetime.MonthLabels(request.StartDate, len(out.Trajectory)-1)
		if err != nil {
			return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
		}

		response := milestoneResponse{EndingBalance: out.EndingBalance}
		for _, target := range request.Targets {
			hit := forecast.MilestoneHit{Target: target}
			if month, reached := out.MilestoneMonth(target); reached {
				hit.Reached = true
				hit.Month = month
				hit.Label = labels[month]
			}
			response.Milestones = append(response.Milestones, hit)
		}
		return http.StatusOK, response
	})
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMortgage"
	var loan loans.LoanConfig
	if !h.decodeJSON(w, r, &loan, op) {
		return
	}

	h.respondCached(w, r, "mortgage", loan, op, func() (int, interface{}) {
		schedule := h.loans.GenerateSchedule(&loan)
		if !schedule.Valid {
			return http.StatusUnprocessableEntity, errorResponse{Error: "invalid mortgage", Problems: schedule.Problems}
		}
		return http.StatusOK, schedule
	})
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.requestLogger(r).Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	logger := h.requestLogger(r)
	results, err := forecast.GetForecast(logger, *cfg)
	if err != nil {
		h.respondError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		Forecasts: results,
		Mortgages: forecast.GetMortgages(logger, *cfg),
		Warnings:  cfg.ValidateConfiguration(),
		CSV:       csvBuf.String(),
		Duration:  elapsed.String(),
	}

	logger.Info("forecast computed",
		zap.String("op", op),
		zap.Int("scenarios", len(response.Forecasts)),
		zap.Int("mortgages", len(response.Mortgages)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleFrequencies(w http.ResponseWriter, _ *http.Request) {
	frequencies := compounding.All()
	infos := make([]frequencyInfo, 0, len(frequencies))
	for _, f := range frequencies {
		periods, ok := f.PeriodsPerYear()
		infos = append(infos, frequencyInfo{Name: f, PeriodsPerYear: periods, Continuous: !ok})
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// respondCached serves a stored response for request when one exists and
// otherwise computes, stores and writes it. Only successful responses are
// stored. Cache failures are logged and never fail the request.
func (h *handler) respondCached(w http.ResponseWriter, r *http.Request, prefix string, request interface{}, op string, compute computeFunc) {
	logger := h.requestLogger(r)

	key, err := cache.Key(prefix, request)
	if err != nil {
		logger.Warn("failed to derive cache key", zap.String("op", op), zap.Error(err))
	} else if data, found, err := h.cache.Get(r.Context(), key); err != nil {
		logger.Warn("cache lookup failed", zap.String("op", op), zap.Error(err))
	} else if found {
		w.Header().Set(CacheHeader, "HIT")
		h.writeRaw(w, http.StatusOK, data)
		return
	}

	status, payload := compute()
	data, err := json.Marshal(payload)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}

	if status == http.StatusOK && key != "" {
		if err := h.cache.Set(r.Context(), key, data); err != nil {
			logger.Warn("cache store failed", zap.String("op", op), zap.Error(err))
		}
	}
	if status != http.StatusOK {
		logger.Debug("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
		)
	}

	w.Header().Set(CacheHeader, "MISS")
	h.writeRaw(w, status, data)
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.requestLogger(r).Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// data may be shared with the cache, so the newline goes out separately.
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
		return
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
