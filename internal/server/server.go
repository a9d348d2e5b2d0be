// Package server exposes the engine as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/engine"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	engine        *engine.Engine
	validate      *validator.Validate
	maxUploadSize int64
	version       string
}

// Options configure NewHandler. Zero values select defaults.
type Options struct {
	MaxUploadSize  int64
	Version        string
	AllowedOrigins []string
}

// NewHandler constructs the HTTP handler that serves the computation API.
func NewHandler(logger *zap.Logger, e *engine.Engine, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if e == nil {
		e = engine.New(logger, engine.DefaultPolicy())
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	h := &handler{
		logger:        logger,
		engine:        e,
		validate:      validate,
		maxUploadSize: opts.MaxUploadSize,
		version:       version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/compliance", h.handleCompliance)
		r.Post("/tcr", h.handleTCR)
		r.Post("/chain", h.handleChain)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug(fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				zap.String("op", "server.request"),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	var req termsRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	schedule, err := h.engine.BuildSchedule(req.toTerms())
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, toScheduleResponse(schedule))
}

func (h *handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompliance"
	var req complianceRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	rate := req.Rate
	if rate == nil && req.Terms != nil {
		rate = &req.Terms.AnnualRate
	}
	if rate == nil {
		h.respondError(w, http.StatusBadRequest, errorResponse{Error: "rate is required when terms are omitted", Field: "rate"}, op)
		return
	}
	if rate.IsNegative() {
		h.respondDomainError(w, &financing.InvalidRateError{Field: "rate", Value: rate.String(), Constraint: "must not be negative"}, op)
		return
	}

	var paidPeriods int
	var schedule *amortization.Schedule
	if req.Terms != nil {
		built, err := h.engine.BuildSchedule(req.Terms.toTerms())
		if err != nil {
			h.respondDomainError(w, err, op)
			return
		}
		schedule = built
		paidPeriods = built.Terms.PaidPeriods
	}

	var verdict compliance.Verdict
	switch {
	case req.Cap != nil:
		if req.Cap.IsNegative() {
			h.respondDomainError(w, &financing.InvalidRateError{Field: "cap", Value: req.Cap.String(), Constraint: "must not be negative"}, op)
			return
		}
		verdict = h.engine.EvaluateCompliance(*rate, *req.Cap, schedule)
	default:
		kind := compliance.CapKind(req.Kind)
		if kind == "" {
			kind = compliance.Remunerative
		}
		var err error
		verdict, err = h.engine.EvaluateKind(kind, *rate, schedule)
		if err != nil {
			h.respondDomainError(w, err, op)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, toVerdictResponse(verdict, paidPeriods, true))
}

func (h *handler) handleTCR(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTCR"
	var req tcrRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	result, err := h.engine.ComputeTCR(req.toFactors())
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}
	verdict := h.engine.EvaluateCompliance(result.EffectiveAnnualRate, compliance.RemunerativeCap(), nil)
	h.writeJSON(w, http.StatusOK, toTCRResponse(result, verdict))
}

func (h *handler) handleChain(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChain"
	var req chainRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	report, err := h.engine.AnalyzeChain(req.toLinks())
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, toChainResponse(report, req.IncludeLines))
}

// decode reads a size-limited JSON body into dst and runs the struct
// validators. It writes the error response itself and reports success.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit)}, op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid JSON body: %v", err)}, op)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		resp := errorResponse{Error: err.Error()}
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			// Drop the root struct name from the namespace.
			field := first.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			resp = errorResponse{
				Error:      fmt.Sprintf("invalid request: %s failed %q", field, first.Tag()),
				Field:      field,
				Constraint: first.Tag(),
			}
		}
		h.respondError(w, http.StatusBadRequest, resp, op)
		return false
	}
	return true
}

// respondDomainError maps engine errors onto 422 with field detail. Anything
// that is not a caller error is a 500.
func (h *handler) respondDomainError(w http.ResponseWriter, err error, op string) {
	if !financing.IsClientError(err) {
		h.respondError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()}, op)
		return
	}

	resp := errorResponse{Error: err.Error()}
	var (
		rateErr   *financing.InvalidRateError
		termErr   *financing.InvalidTermError
		factorErr *financing.InvalidFactorError
		chainErr  *financing.InvalidChainError
	)
	switch {
	case errors.As(err, &rateErr):
		resp.Field, resp.Constraint = rateErr.Field, rateErr.Constraint
	case errors.As(err, &termErr):
		resp.Field, resp.Constraint = termErr.Field, termErr.Constraint
	case errors.As(err, &factorErr):
		resp.Field, resp.Constraint = factorErr.Field, factorErr.Constraint
	case errors.As(err, &chainErr):
		resp.Field, resp.Constraint, resp.Order = chainErr.Field, chainErr.Constraint, chainErr.Order
	}
	h.respondError(w, http.StatusUnprocessableEntity, resp, op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, resp errorResponse, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", resp.Error),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", resp.Error),
		)
	}
	h.writeJSON(w, status, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
