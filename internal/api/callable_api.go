package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-service/internal/receipts"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// CallableAPI serves sendPushNotification using the Firebase callable protocol:
// the request body is {"data": ...} and the response is {"result": ...} or {"error": ...}.
type CallableAPI struct {
	Sender   dispatch.Sender
	Receipts *receipts.Recorder
	Logger   *slog.Logger
}

func NewCallableAPI(sender dispatch.Sender, recorder *receipts.Recorder, logger *slog.Logger) *CallableAPI {
	return &CallableAPI{
		Sender:   sender,
		Receipts: recorder,
		Logger:   logger.With("component", "CallableAPI"),
	}
}

type callableRequest struct {
	Data dispatch.NotificationRequest `json:"data"`
}

type callableResult struct {
	Result *dispatch.Result `json:"result"`
}

type callableError struct {
	Status  string        `json:"status"`
	Kind    dispatch.Kind `json:"kind"`
	Message string        `json:"message"`
}

type callableErrorEnvelope struct {
	Error callableError `json:"error"`
}

func (api *CallableAPI) SendPushNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req callableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Logger.Warn("SendPushNotification: JSON Decode failed", "err", err)
		writeCallableError(w, dispatch.InvalidArgument("Bad Request"))
		return
	}

	requestID := uuid.NewString()
	api.Logger.Info("SendPushNotification: request received", "request_id", requestID,
		"title", req.Data.Title, "has_token", req.Data.Token != "")

	result, err := api.Sender.Dispatch(ctx, req.Data)

	receipt := dispatch.NewReceipt(requestID, dispatch.SourceCallable, req.Data, result, err)
	receipt.RequestedBy = callerURN(r)
	api.Receipts.Record(ctx, receipt)

	if err != nil {
		writeCallableError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, callableResult{Result: result})
}

// callerURN returns the authenticated caller, if the auth middleware ran.
// The verified subject wins; the optional handle claim is a fallback.
func callerURN(r *http.Request) string {
	ctx := r.Context()
	id, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || id == "" {
		id, ok = middleware.GetUserHandleFromContext(ctx)
		if !ok || id == "" {
			return ""
		}
	}
	u, err := urn.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}

func writeCallableError(w http.ResponseWriter, err error) {
	kind := dispatch.KindOf(err)
	writeJSON(w, kind.HTTPStatus(), callableErrorEnvelope{
		Error: callableError{
			Status:  kind.Status(),
			Kind:    kind,
			Message: err.Error(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
