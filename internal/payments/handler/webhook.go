package handler

import (
	"encoding/json"
	"net/http"

	"reservo/internal/payments/service"
	apperrors "reservo/pkg/errors"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// Every provider delivery carries a correlation id; a call without one is
// rejected before the payload is even parsed.
const correlationHeader = "X-Request-Id"

type WebhookHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewWebhookHandler(service service.PaymentService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/webhooks/yookassa", h.Receive)
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if r.Header.Get(correlationHeader) == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Missing "+correlationHeader+" header")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Receive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var event service.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Receive", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	ack, err := h.service.Process(r.Context(), &event)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Receive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, ack); err != nil {
		h.log.Error("failed to write ack response", "handler", "Receive", "operation", "WriteJSON", "error", err)
	}
}
