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

	"github.com/google/uuid"
	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/internal/config"
	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/output"
	"github.com/iwvelando/water-builder/pkg/salts"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type contextKey struct{}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	catalog       *salts.Catalog
}

// NewHandler constructs the HTTP handler that serves the water builder API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		catalog:       salts.DefaultCatalog(),
	}

	mux := http.NewServeMux()

	// Solve and best fit with a JSON request body
	mux.HandleFunc("/api/solve", h.instrument("solve", h.handleSolve))
	mux.HandleFunc("/api/bestfit", h.instrument("bestfit", h.handleBestFit))

	// Run whichever mode an uploaded YAML configuration names
	mux.HandleFunc("/api/config", h.instrument("config", h.handleConfigUpload))

	mux.HandleFunc("/api/salts", h.instrument("salts", h.handleSalts))
	mux.HandleFunc("/api/version", h.instrument("version", h.handleVersion))
	mux.Handle("/metrics", promhttp.Handler())

	return h.withRequestID(mux)
}

type solveResponse struct {
	RequestID  string                  `json:"requestId"`
	Mode       string                  `json:"mode"`
	Result     *output.ResultDocument  `json:"result,omitempty"`
	BestFit    *output.BestFitDocument `json:"bestFit,omitempty"`
	CSV        string                  `json:"csv,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
	Duration   string                  `json:"duration"`
	ConfigYAML string                  `json:"configYaml,omitempty"`
}

type saltsResponse struct {
	Salts []salts.Entry `json:"salts"`
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	h.handleJSON(w, r, constants.ModeSolve, "server.handleSolve")
}

func (h *handler) handleBestFit(w http.ResponseWriter, r *http.Request) {
	h.handleJSON(w, r, constants.ModeBestFit, "server.handleBestFit")
}

func (h *handler) handleJSON(w http.ResponseWriter, r *http.Request, mode, op string) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var cfg config.Configuration
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	cfg.Normalize()
	cfg.Water.Mode = mode
	h.run(w, r, &cfg, start, op)
}

func (h *handler) handleConfigUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigUpload"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

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
			h.logger.Warn("failed to close uploaded file",
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
	h.run(w, r, cfg, start, op)
}

// run validates cfg and answers with the solve or best fit result for its
// mode. Infeasible outcomes are successful responses.
func (h *handler) run(w http.ResponseWriter, r *http.Request, cfg *config.Configuration, start time.Time, op string) {
	if err := cfg.Validate(); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	solver, err := builder.NewSolver(h.logger, h.catalog, cfg.ToOptions())
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	resp := solveResponse{
		RequestID: requestID(r.Context()),
		Mode:      cfg.Water.Mode,
		Warnings:  cfg.ValidateConfiguration(),
	}

	var feasible bool
	switch cfg.Water.Mode {
	case constants.ModeBestFit:
		out, err := solver.BestFit(cfg.ToBestFitInput(h.catalog))
		if err != nil {
			h.respondSolveError(w, r, err, op)
			return
		}
		doc := output.NewBestFitDocument(out, h.catalog)
		resp.BestFit = &doc
		if out.Found {
			resp.CSV = output.CsvString(out.Result, h.catalog)
		}
		feasible = out.Found
	default:
		in, err := cfg.ToInput(h.catalog)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
			return
		}
		res, err := solver.Solve(in)
		if err != nil {
			h.respondSolveError(w, r, err, op)
			return
		}
		doc := output.NewResultDocument(res, h.catalog)
		resp.Result = &doc
		resp.CSV = output.CsvString(res, h.catalog)
		feasible = res.Feasible
	}

	if configYAML, err := yaml.Marshal(cfg); err != nil {
		h.logger.Warn("failed to marshal normalized configuration",
			zap.String("op", op),
			zap.Error(err),
		)
	} else {
		resp.ConfigYAML = string(configYAML)
	}

	elapsed := time.Since(start)
	resp.Duration = elapsed.String()

	h.logger.Info("water request computed",
		zap.String("op", op),
		zap.String("requestId", resp.RequestID),
		zap.String("mode", resp.Mode),
		zap.Bool("feasible", feasible),
		zap.Int("warnings", len(resp.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) respondSolveError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusInternalServerError
	if errors.Is(err, builder.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	h.respondError(w, r, status, err.Error(), op)
}

func (h *handler) handleSalts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, saltsResponse{Salts: h.catalog.Entries()})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	id := requestID(r.Context())
	h.logger.Error("water request failed",
		zap.String("op", op),
		zap.String("requestId", id),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg, "requestId": id})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
