package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/desertthunder/playlift/internal/models"
	"github.com/desertthunder/playlift/internal/services"
	"github.com/desertthunder/playlift/internal/shared"
)

// maxBodyBytes bounds a submit request body.
const maxBodyBytes = 64 << 10

// Transfers is the job intake the API exposes. tasks.Dispatcher is the production implementation.
type Transfers interface {
	Submit(ctx context.Context, req models.TransferRequest) (string, error)
	Status(ctx context.Context, id string) (*models.TransferJob, error)
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error     string      `json:"error"`
	ErrorType shared.Kind `json:"error_type"`
	JobID     string      `json:"job_id,omitempty"`
}

// TransferHandler serves the submit and status endpoints.
type TransferHandler struct {
	transfers Transfers
	logger    *log.Logger
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(t Transfers, logger *log.Logger) *TransferHandler {
	return &TransferHandler{transfers: t, logger: logger}
}

// Submit handles POST /api/transfers.
func (h *TransferHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload services.TransferPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body: %v", shared.ErrInvalidInput, err))
		return
	}

	req, err := payload.Request()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.transfers.Submit(r.Context(), req)
	if err != nil {
		h.logger.Warn("Transfer rejected", "direction", req.Direction, "error", err)
		writeErrorWithJob(w, err, id)
		return
	}

	h.logger.Info("Transfer accepted", "job", id, "direction", req.Direction)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

// Status handles GET /api/transfers/{id}.
func (h *TransferHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.transfers.Status(r.Context(), id)
	if err != nil {
		h.logger.Error("Status lookup failed", "job", id, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job.View())
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorWithJob(w, err, "")
}

func writeErrorWithJob(w http.ResponseWriter, err error, jobID string) {
	kind := shared.KindOf(err)
	writeJSON(w, statusFor(err, kind), errorBody{Error: err.Error(), ErrorType: kind, JobID: jobID})
}

// statusFor maps an error onto an HTTP status code.
func statusFor(err error, kind shared.Kind) int {
	switch {
	case kind == shared.KindValidation:
		return http.StatusBadRequest
	case kind == shared.KindAuth:
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
