package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

// TrackingHandler serves the customs views and tracking administration.
type TrackingHandler struct {
	service ports.TrackingService
}

func NewTrackingHandler(service ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// modeParam reads ?mode=, defaulting to "any".
func modeParam(c echo.Context) (domain.SummaryMode, error) {
	raw := strings.TrimSpace(c.QueryParam("mode"))
	if raw == "" {
		return domain.ModeAny, nil
	}
	return domain.ParseSummaryMode(raw)
}

// Customs handles GET /v1/trackings/:number/customs.
//
// @Summary      Customs summary and timeline of a shipment
// @Tags         trackings
// @Produce      json
// @Security     BearerAuth
// @Param        number  path      string  true   "Tracking number"
// @Param        mode    query     string  false  "any (default) or import_filtered"
// @Success      200     {object}  ports.CustomsView
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/trackings/{number}/customs [get]
func (h *TrackingHandler) Customs(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}
	mode, err := modeParam(c)
	if err != nil {
		return err
	}

	view, err := h.service.Customs(c.Request().Context(), c.Param("number"), mode)
	if err != nil {
		return err
	}
	if view.Timeline == nil {
		view.Timeline = domain.Timeline{}
	}
	return c.JSON(http.StatusOK, view)
}

// Inspect handles GET /v1/trackings/:number/provider: the live provider
// payload run through the pipeline, nothing stored.
//
// @Summary      Normalize the live provider payload of a shipment
// @Tags         trackings
// @Produce      json
// @Security     BearerAuth
// @Param        number  path      string  true   "Tracking number"
// @Param        mode    query     string  false  "any (default) or import_filtered"
// @Success      200     {object}  previewResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/trackings/{number}/provider [get]
func (h *TrackingHandler) Inspect(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}
	mode, err := modeParam(c)
	if err != nil {
		return err
	}

	res, err := h.service.Inspect(c.Request().Context(), c.Param("number"), mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPreviewResponse(res))
}

// List handles GET /v1/trackings.
//
// @Summary      List tracked shipments
// @Tags         trackings
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Summary status filter"
// @Param        search  query     string  false  "Tracking number prefix"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listTrackingsResponse
// @Failure      400     {object}  errorResponse
// @Router       /v1/trackings [get]
func (h *TrackingHandler) List(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}

	filter := ports.ListTrackingsFilter{
		Status: strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
	switch domain.SummaryStatus(filter.Status) {
	case "", domain.StatusUnknown, domain.StatusInProgress, domain.StatusCleared, domain.StatusPreCustoms:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
	}

	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return err
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(res))
}

// Register handles POST /v1/trackings.
//
// @Summary      Register tracking numbers with the provider
// @Tags         trackings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      trackingNumbersRequest  true  "Numbers to register"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/trackings [post]
func (h *TrackingHandler) Register(c echo.Context) error {
	req, err := bindNumbers(c)
	if err != nil {
		return err
	}

	out, err := h.service.Register(c.Request().Context(), req.Numbers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRegisterResponse(out))
}

// Refresh handles POST /v1/trackings/:number/refresh.
//
// @Summary      Pull and ingest the current provider state of a shipment
// @Tags         trackings
// @Produce      json
// @Security     BearerAuth
// @Param        number  path      string  true  "Tracking number"
// @Success      200     {object}  refreshResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/trackings/{number}/refresh [post]
func (h *TrackingHandler) Refresh(c echo.Context) error {
	results, err := h.service.Refresh(c.Request().Context(), []string{c.Param("number")})
	if err != nil && len(results) == 0 {
		return err
	}
	if len(results) == 0 {
		return domain.ErrTrackingNotFound
	}

	resp := refreshResponse{Results: make([]ingestResultResponse, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, toIngestResponse(r))
	}
	if err != nil {
		resp.Errors = []string{err.Error()}
	}
	return c.JSON(http.StatusOK, resp)
}

// Push handles POST /v1/trackings/push.
//
// @Summary      Ask the provider to re-send the latest state via webhook
// @Tags         trackings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      trackingNumbersRequest  true  "Numbers to push"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/trackings/push [post]
func (h *TrackingHandler) Push(c echo.Context) error {
	req, err := bindNumbers(c)
	if err != nil {
		return err
	}
	if err := h.service.RequestPush(c.Request().Context(), req.Numbers); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "push requested", Count: len(req.Numbers)})
}

// Normalize handles POST /v1/normalize: the body is a raw provider record.
//
// @Summary      Preview the pipeline over a raw payload
// @Tags         trackings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        mode  query     string  false  "any (default) or import_filtered"
// @Param        body  body      object  true   "Raw provider record"
// @Success      200   {object}  previewResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/normalize [post]
func (h *TrackingHandler) Normalize(c echo.Context) error {
	mode, err := modeParam(c)
	if err != nil {
		return err
	}

	body, err := readBody(c, maxWebhookBody)
	if err != nil {
		return err
	}
	raw, err := tracking.DecodePayload(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload must be a JSON object")
	}

	res, err := h.service.Preview(raw, mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPreviewResponse(res))
}

func bindNumbers(c echo.Context) (*trackingNumbersRequest, error) {
	var req trackingNumbersRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return &req, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
