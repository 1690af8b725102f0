package httphandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gh "github.com/google/go-github/v82/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/forgekit/internal/application"
	"github.com/ericfisherdev/forgekit/internal/config"
)

// maxPayloadBytes caps webhook bodies at GitHub's documented 25 MB delivery limit.
const maxPayloadBytes = 25 << 20

// livenessMessage is returned by GET /.
const livenessMessage = "Webhook receiver is alive"

// invalidPayloadMessage is returned with 400 for bodies that are not JSON.
const invalidPayloadMessage = "Invalid JSON payload"

// Handler is the HTTP driving adapter for the webhook receiver.
type Handler struct {
	webhooks *application.WebhookService
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(webhooks *application.WebhookService, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		webhooks: webhooks,
		metrics:  metrics,
		logger:   logger,
	}
}

// NewRouter creates an http.Handler with all routes registered and wrapped with
// request-id, logging and recovery middleware. gatherer backs GET /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Recovery innermost so panics are caught before logging.
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))

	r.Get(config.LivenessPath, h.Health)
	r.Post("/", h.ReceiveWebhook)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// Health returns the fixed liveness document.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: livenessMessage,
	})
}

// ReceiveWebhook accepts one webhook delivery. Bodies that are not valid JSON
// are rejected with 400; everything else is logged and acknowledged with 200.
// The X-Hub-Signature-256 header is not checked.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		h.metrics.observeRejected()
		writeError(w, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	eventType := gh.WebHookType(r)
	deliveryID := gh.DeliveryID(r)

	receipt, err := h.webhooks.Receive(r.Context(), eventType, deliveryID, body)
	if err != nil {
		if errors.Is(err, application.ErrInvalidPayload) {
			h.metrics.observeRejected()
			writeError(w, http.StatusBadRequest, invalidPayloadMessage)
			return
		}
		h.logger.Error("failed to receive webhook", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.metrics.observeReceived(receipt.Event, h.webhooks.Handles(receipt.Event))

	writeJSON(w, http.StatusOK, AckResponse{
		OK:       true,
		Event:    optional(receipt.Event),
		Delivery: optional(receipt.Delivery),
	})
}
