package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/dto"
	"github.com/pranav8431/saas-analytics-dashboard/internal/service"
)

// Handler serves the analytics HTTP API. Requests are assumed already
// authenticated and tenant-scoped by the surrounding platform; the
// tenant_id path parameter is trusted as given.
type Handler struct {
	analytics      service.AnalyticsServicer
	router         *gin.Engine
	maxUploadBytes int64
	log            *zap.Logger
}

func NewHandler(analytics service.AnalyticsServicer, maxUploadBytes int64, log *zap.Logger) *Handler {
	h := &Handler{
		analytics:      analytics,
		router:         gin.Default(),
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)

	v1 := h.router.Group("/v1")
	v1.POST("/tenants/:tenant_id/uploads", h.uploadCSV)
	v1.GET("/tenants/:tenant_id/timeseries", h.getTimeSeries)
	v1.GET("/tenants/:tenant_id/anomalies", h.listAnomalies)
	v1.POST("/anomalies/:anomaly_id/acknowledge", h.acknowledgeAnomaly)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// uploadCSV handles POST /v1/tenants/:tenant_id/uploads. The multipart
// "file" part carries the CSV; the body is capped at the configured
// upload limit before any parsing. A batch with validation errors is
// rejected whole with per-row diagnostics.
func (h *Handler) uploadCSV(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.log.Warn("Invalid upload request",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "multipart field 'file' is required and must fit the upload size limit",
		})
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.log.Error("Failed to close upload file", zap.Error(err))
		}
	}()

	response, err := h.analytics.IngestCSV(c.Request.Context(), tenantID, file)
	if err != nil {
		h.log.Error("Failed to ingest upload",
			zap.String("tenant_id", tenantID),
			zap.String("filename", header.Filename),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	if response.Status != "committed" {
		h.log.Warn("Upload rejected",
			zap.String("tenant_id", tenantID),
			zap.String("file_id", response.FileID),
			zap.Int("invalid_rows", response.Summary.InvalidRows))
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}

	h.log.Info("Upload accepted",
		zap.String("tenant_id", tenantID),
		zap.String("file_id", response.FileID),
		zap.Int("events_inserted", response.EventsInserted))

	c.JSON(http.StatusCreated, response)
}

// getTimeSeries handles GET /v1/tenants/:tenant_id/timeseries
func (h *Handler) getTimeSeries(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	var req dto.TimeSeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid timeseries request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.analytics.GetTimeSeries(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.log.Error("Failed to get timeseries",
			zap.String("tenant_id", tenantID),
			zap.String("event_type", req.EventType),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// listAnomalies handles GET /v1/tenants/:tenant_id/anomalies
func (h *Handler) listAnomalies(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	var req dto.ListAnomaliesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid anomaly list request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.analytics.ListAnomalies(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.log.Error("Failed to list anomalies",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// acknowledgeAnomaly handles POST /v1/anomalies/:anomaly_id/acknowledge
func (h *Handler) acknowledgeAnomaly(c *gin.Context) {
	anomalyID := c.Param("anomaly_id")

	var req dto.AcknowledgeAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid acknowledge request",
			zap.String("anomaly_id", anomalyID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if err := h.analytics.AcknowledgeAnomaly(c.Request.Context(), anomalyID, req.AcknowledgedBy); err != nil {
		h.log.Error("Failed to acknowledge anomaly",
			zap.String("anomaly_id", anomalyID),
			zap.String("acknowledged_by", req.AcknowledgedBy),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.AcknowledgeAnomalyResponse{
		AnomalyID: anomalyID,
		Status:    "acknowledged",
	})
}
