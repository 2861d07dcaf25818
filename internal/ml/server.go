package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ModelServer provides HTTP API for model predictions
type ModelServer struct {
	predictor *Predictor
	server    *http.Server
	started   time.Time
}

// PredictionResponse represents the prediction result
type PredictionResponse struct {
	Status    string    `json:"status"`
	FitID     string    `json:"fit_id"`
	Latency   float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewModelServer creates a new HTTP server for model serving. A nil gatherer
// serves the default prometheus registry on /metrics.
func NewModelServer(predictor *Predictor, port int, gatherer prometheus.Gatherer) *ModelServer {
	ms := &ModelServer{
		predictor: predictor,
		started:   time.Now(),
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", ms.handlePredict)
	mux.HandleFunc("/health", ms.handleHealth)
	mux.HandleFunc("/model/info", ms.handleModelInfo)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	ms.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return ms
}

// Handler exposes the routes without a listener.
func (ms *ModelServer) Handler() http.Handler {
	return ms.server.Handler
}

// Start begins serving HTTP requests. It returns nil after Shutdown.
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Msg("starting model server")
	if err := ms.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	start := time.Now()

	var input map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	res, err := ms.predictor.PredictDetailed(input)
	if err != nil {
		status := http.StatusInternalServerError
		var notFound *ArtifactNotFoundError
		if errors.As(err, &notFound) {
			status = http.StatusServiceUnavailable
		}
		log.Error().Err(err).Msg("prediction failed")
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		Status:    res.Status,
		FitID:     res.FitID,
		Latency:   float64(time.Since(start).Microseconds()) / 1000,
		Timestamp: time.Now().UTC(),
	})
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"healthy":     true,
		"uptime_s":    time.Since(ms.started).Seconds(),
		"model_ready": true,
	}

	status := http.StatusOK
	if _, err := ms.predictor.Info(); err != nil {
		health["healthy"] = false
		health["model_ready"] = false
		health["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, health)
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := ms.predictor.Info()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
