package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"waste-report-service/internal/feed"
	"waste-report-service/internal/http/middleware"
	"waste-report-service/internal/model"
	"waste-report-service/internal/service"
)

type Handler struct {
	reportService    *service.ReportService
	escalationEngine *service.EscalationEngine
	hub              *feed.Hub
	log              zerolog.Logger
}

func NewHandler(
	reportService *service.ReportService,
	escalationEngine *service.EscalationEngine,
	hub *feed.Hub,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		reportService:    reportService,
		escalationEngine: escalationEngine,
		hub:              hub,
		log:              log,
	}
}

func (h *Handler) submitReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Location    string  `json:"location" binding:"required"`
		Lat         *string `json:"lat"`
		Lng         *string `json:"lng"`
		WasteType   string  `json:"waste_type" binding:"required"`
		Severity    string  `json:"severity" binding:"required"`
		Description string  `json:"description"`
		Image       string  `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.SubmitReportInput{
		Location:    req.Location,
		Lat:         req.Lat,
		Lng:         req.Lng,
		WasteType:   parseWasteType(req.WasteType),
		Severity:    parseSeverity(req.Severity),
		Description: req.Description,
		Image:       req.Image,
	}

	report, err := h.reportService.Submit(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(report))
}

func (h *Handler) listReports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseReportQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	reports, err := h.reportService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": reports}))
}

func (h *Handler) getReport(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) completeReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return
	}

	var req struct {
		AfterPhoto string `json:"after_photo"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.reportService.Complete(c.Request.Context(), principal, id, req.AfterPhoto, req.Notes); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "completed"}))
}

func (h *Handler) escalateReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return
	}

	// The body is optional; an omitted reason falls back to the
	// default one.
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.escalationEngine.ManualEscalate(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "escalated"}))
}

func (h *Handler) driverWorklist(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	tasks, err := h.reportService.Worklist(c.Request.Context(), principal, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": tasks}))
}

func (h *Handler) analytics(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	summary, err := h.reportService.Analytics(c.Request.Context(), principal, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) slaDashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	dashboard, err := h.reportService.SLAView(c.Request.Context(), principal, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(dashboard))
}

func (h *Handler) escalationStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	stats, err := h.escalationEngine.Stats(c.Request.Context(), principal, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}

// streamReports pushes the full collection to the client as a
// server-sent event on every change, mirroring the snapshot-on-change
// subscription the dashboards are built on.
func (h *Handler) streamReports(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	snapshots := h.hub.Subscribe(c.Request.Context())

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-snapshots
		if !ok {
			return false
		}
		payload, err := json.Marshal(snapshot)
		if err != nil {
			h.log.Error().Err(err).Msg("snapshot encode failed")
			return false
		}
		c.SSEvent("snapshot", string(payload))
		return true
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch err {
	case service.ErrPermissionDenied:
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case service.ErrInvalidInput, service.ErrMissingEvidence:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case service.ErrInvalidTransition:
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case service.ErrSubmissionFailed, service.ErrUpdateFailed:
		c.JSON(http.StatusBadGateway, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseReportQuery(c *gin.Context) (service.ListReportsOptions, error) {
	var opts service.ListReportsOptions

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.ReportStatus(strings.ToUpper(val)))
		}
	}
	if typeParam := c.Query("waste_type"); typeParam != "" {
		for _, val := range splitCSV(typeParam) {
			opts.WasteTypes = append(opts.WasteTypes, parseWasteType(val))
		}
	}
	if severityParam := c.Query("severity"); severityParam != "" {
		for _, val := range splitCSV(severityParam) {
			opts.Severities = append(opts.Severities, parseSeverity(val))
		}
	}
	if escalatedParam := strings.TrimSpace(c.Query("escalated")); escalatedParam != "" {
		escalated, err := strconv.ParseBool(escalatedParam)
		if err != nil {
			return opts, err
		}
		opts.Escalated = &escalated
	}
	if mine := strings.TrimSpace(c.Query("mine")); mine != "" {
		v, err := strconv.ParseBool(mine)
		if err != nil {
			return opts, err
		}
		opts.Mine = v
	}
	if dateFrom := strings.TrimSpace(c.Query("date_from")); dateFrom != "" {
		ts, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			return opts, err
		}
		opts.DateFrom = &ts
	}
	if dateTo := strings.TrimSpace(c.Query("date_to")); dateTo != "" {
		ts, err := time.Parse(time.RFC3339, dateTo)
		if err != nil {
			return opts, err
		}
		opts.DateTo = &ts
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := strings.TrimSpace(c.Query("offset")); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}

	return opts, nil
}

// parseWasteType accepts both the wire spelling and the human one
// ("Dry Waste" and "DRY_WASTE" normalize to the same value).
func parseWasteType(raw string) model.WasteType {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return model.WasteType(normalized)
}

func parseSeverity(raw string) model.Severity {
	return model.Severity(strings.ToUpper(strings.TrimSpace(raw)))
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
