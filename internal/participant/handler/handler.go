package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/participant"
	"rollcall/internal/platform/middleware"
	dErrors "rollcall/pkg/domain-errors"
)

// Service defines the registration operations the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, sub participant.Submission) (participant.Record, error)
	ListAll(ctx context.Context) ([]participant.Record, error)
}

// Handler handles the participant endpoints. It stays thin: decoding,
// delegation, and response envelopes only.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the participant routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/participants", h.handleList)
	r.Post("/api/register", h.handleRegister)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list participants",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to read participants.",
		})
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var sub participant.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.WarnContext(ctx, "malformed registration body",
			"request_id", requestID,
			"error", err,
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Invalid request body.",
		})
		return
	}

	rec, err := h.service.Register(ctx, sub)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": "Validation failed",
				"errors":  dErrors.Details(err),
			})
			return
		}
		h.logger.ErrorContext(ctx, "failed to register participant",
			"request_id", requestID,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to save participant.",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Registration successful",
		"participant": rec,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
