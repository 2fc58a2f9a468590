package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
	"github.com/Bahjat/llms-txt-generator/internal/platform/sse"
)

// Transport handles HTTP requests for llms.txt generation.
type Transport struct {
	service *Service
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /generate", t.handleGenerate)
	mux.HandleFunc("GET /health", t.handleHealth)
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}

func (t *Transport) handleGenerate(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	events, err := t.service.Start(r.Context(), req)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	sse.SetHeaders(w)
	w.WriteHeader(http.StatusOK)
	stream := sse.NewWriter(w)

	for {
		select {
		case snapshot, ok := <-events.Events():
			if !ok {
				return
			}
			if err := stream.WriteEvent(snapshot); err != nil {
				t.logger.Debug("progress stream interrupted", "error", err)
				events.Abandon()
				return
			}
		case <-r.Context().Done():
			events.Abandon()
			return
		}
	}
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.Unauthorized:
			status = http.StatusUnauthorized
		case errs.RateLimited:
			status = http.StatusTooManyRequests
		case errs.Unreachable, errs.NoContent:
			status = http.StatusBadGateway
		case errs.Timeout:
			status = http.StatusGatewayTimeout
		case errs.ParsingFailed, errs.Unknown:
			// 500 Internal Server Error
		}
		t.renderError(w, status, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
