package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tinywideclouds/go-microservice-base/pkg/response"

	"github.com/tinywideclouds/go-push-service/internal/receipts"
)

const (
	defaultReceiptLimit = 20
	maxReceiptLimit     = 100
)

type ReceiptsAPI struct {
	Receipts *receipts.Recorder
	Logger   *slog.Logger
}

func NewReceiptsAPI(recorder *receipts.Recorder, logger *slog.Logger) *ReceiptsAPI {
	return &ReceiptsAPI{
		Receipts: recorder,
		Logger:   logger.With("component", "ReceiptsAPI"),
	}
}

// ListReceipts handles GET /api/v1/receipts?token=...&limit=...
func (api *ReceiptsAPI) ListReceipts(w http.ResponseWriter, r *http.Request) {
	if !api.Receipts.Enabled() {
		response.WriteJSONError(w, http.StatusServiceUnavailable, "receipts disabled")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	limit := defaultReceiptLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.WriteJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxReceiptLimit)
	}

	list, err := api.Receipts.Store().ListByToken(r.Context(), token, limit)
	if err != nil {
		api.Logger.Error("failed to list receipts", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}

	writeJSON(w, http.StatusOK, list)
}
