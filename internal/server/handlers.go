package server

import (
	"context"
	"errors"
	"net/http"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeofday"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// TradeService is what the handlers need from the journal.
type TradeService interface {
	Record(ctx context.Context, sub journal.Submission) (*models.Trade, error)
	List(ctx context.Context) ([]models.Trade, error)
	Ping(ctx context.Context) error
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	svc TradeService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, svc TradeService) *APIHandler {
	return &APIHandler{log: log, svc: svc}
}

// CreatedResponse acknowledges a stored trade.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"error"`
	Field   string `json:"field,omitempty"`
}

// CreateTradeHandler validates and stores one trade.
func (h *APIHandler) CreateTradeHandler(w http.ResponseWriter, r *http.Request) {
	var sub journal.Submission
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &sub); err != nil {
		h.log.Info("Malformed trade payload", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Code:    "INVALID_REQUEST",
		})
		return
	}

	// Input widgets send 24-hour times; trades store the 12-hour form.
	if timeofday.Is24Hour(sub.Time) {
		sub.Time, _ = timeofday.To12Hour(sub.Time)
	}

	trade, err := h.svc.Record(r.Context(), sub)
	if err != nil {
		var verr *journal.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, r, http.StatusBadRequest, ErrorResponse{
				Message: verr.Field + " " + verr.Message,
				Code:    "VALIDATION_FAILED",
				Field:   verr.Field,
			})
		default:
			h.log.Error("Error processing trade data", zap.Error(err))
			writeError(w, r, storageStatus(err), ErrorResponse{
				Message: "Error processing trade data",
				Code:    "STORAGE_UNAVAILABLE",
			})
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatedResponse{Message: "Trade saved", ID: trade.ID})
}

// TradesHandler returns all trades, most recent first.
// With ?clock=24h the time column is rendered as "HH:MM".
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.svc.List(r.Context())
	if err != nil {
		h.log.Error("Failed to get trades", zap.Error(err))
		writeError(w, r, storageStatus(err), ErrorResponse{
			Message: "Error fetching trades",
			Code:    "STORAGE_UNAVAILABLE",
		})
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	if r.URL.Query().Get("clock") == "24h" {
		for i := range trades {
			if t24, err := timeofday.To24Hour(trades[i].Time); err == nil {
				trades[i].Time = t24
			}
		}
	}

	render.JSON(w, r, trades)
}

// HealthHandler reports whether the store is reachable.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage unavailable",
			Code:    "STORAGE_UNAVAILABLE",
		})
		return
	}
	render.PlainText(w, r, "OK")
}

func storageStatus(err error) int {
	if errors.Is(err, database.ErrStorageUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}
