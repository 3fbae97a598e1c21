package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/api/metrics"
	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/infrastructure/provider/seventeentrack"
	"github.com/99minutos/customs-tracking/internal/infrastructure/queue"
)

const maxWebhookBody = 5 << 20

// DeliveryQueue is the interface the handlers use to hand deliveries to the
// ingestion workers.
type DeliveryQueue interface {
	TryEnqueue(in ports.IngestInput) error
}

// WebhookHandler receives provider push notifications.
type WebhookHandler struct {
	apiKey string
	queue  DeliveryQueue
	log    zerolog.Logger
	now    func() time.Time
}

func NewWebhookHandler(apiKey string, queue DeliveryQueue, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{apiKey: apiKey, queue: queue, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Receive handles POST /webhooks/17track.
//
// @Summary      Receive a provider webhook
// @Description  Verifies the signature and queues tracking events for ingestion. Other events are acknowledged and skipped.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        sign  header    string  false  "Webhook signature (may also be sent in the body)"
// @Success      200   {object}  webhookAck  "event skipped"
// @Success      202   {object}  webhookAck  "event queued"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /webhooks/17track [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	if h.apiKey == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook verification not configured")
	}

	body, err := readBody(c, maxWebhookBody)
	if err != nil {
		return err
	}

	wh, err := seventeentrack.VerifyWebhook(body, c.Request().Header, h.apiKey)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, domain.ErrInvalidSignature) {
			reason = "bad_signature"
		}
		metrics.DeliveriesErrorsTotal.WithLabelValues(reason).Inc()
		h.log.Warn().Err(err).Str("remote", c.RealIP()).Msg("webhook rejected")
		return err
	}

	if !wh.CarriesTracking() {
		h.log.Debug().Str("event", wh.Event).Msg("webhook event skipped")
		return c.JSON(http.StatusOK, webhookAck{OK: true, Skipped: wh.Event})
	}
	if wh.Number == "" {
		metrics.DeliveriesErrorsTotal.WithLabelValues("missing_number").Inc()
		return fmt.Errorf("webhook: %w", domain.ErrMissingNumber)
	}

	return h.enqueue(c, ports.IngestInput{
		TrackingNumber: wh.Number,
		Event:          wh.Event,
		Source:         domain.SourceWebhook,
		Payload:        wh.Data,
		ReceivedAt:     h.now(),
	})
}

// Sample handles POST /v1/test/webhook: it builds a signed three-milestone
// delivery for a number and feeds it through verification and the queue.
//
// @Summary      Inject a signed sample webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sampleWebhookRequest  true  "Tracking number"
// @Success      202   {object}  webhookAck
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/test/webhook [post]
func (h *WebhookHandler) Sample(c echo.Context) error {
	var req sampleWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Event == "" {
		req.Event = seventeentrack.EventTrackingUpdated
	}
	if h.apiKey == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook verification not configured")
	}

	body, err := seventeentrack.SampleWebhook(req.Event, req.Number, h.apiKey, h.now())
	if err != nil {
		return err
	}
	wh, err := seventeentrack.VerifyWebhook(body, http.Header{}, h.apiKey)
	if err != nil {
		return err
	}
	return h.enqueue(c, ports.IngestInput{
		TrackingNumber: wh.Number,
		Event:          wh.Event,
		Source:         domain.SourceAPI,
		Payload:        wh.Data,
		ReceivedAt:     h.now(),
	})
}

func (h *WebhookHandler) enqueue(c echo.Context, in ports.IngestInput) error {
	if err := h.queue.TryEnqueue(in); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			c.Response().Header().Set("Retry-After", "5")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "ingestion queue full")
		}
		return err
	}
	return c.JSON(http.StatusAccepted, webhookAck{OK: true, Number: in.TrackingNumber})
}
