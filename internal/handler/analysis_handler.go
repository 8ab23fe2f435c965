package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/db"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/db/repository"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/collector"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/quota"
)

const (
	maxListLimit = 100

	// statusClientClosedRequest is the nginx convention for a client that went away.
	statusClientClosedRequest = 499
)

// AnalysisService is the part of service.AnalysisService the HTTP layer needs.
type AnalysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error)
	QuotaInfo() models.QuotaInfo
	GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, filters *repository.ReportFilters) ([]*models.ReportListItem, int, error)
}

// ReportListResponse is the paginated report listing.
type ReportListResponse struct {
	Items  []*models.ReportListItem `json:"items"`
	Total  int                      `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// AnalysisHandler handles analysis, quota and report endpoints.
type AnalysisHandler struct {
	service AnalysisService
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(svc AnalysisService, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{
		service: svc,
		logger:  logger,
	}
}

// Analyze runs a keyword analysis: GET /api/v1/analysis?keyword=&months=&maxResults=
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid analysis query",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Quota reports the current quota snapshot.
func (h *AnalysisHandler) Quota(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.QuotaInfo())
}

// GetReport returns one stored report.
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "Invalid report id")
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports lists stored reports: GET /api/v1/reports?keyword=&limit=&offset=
func (h *AnalysisHandler) ListReports(c *gin.Context) {
	limit, err := queryInt(c, "limit", repository.DefaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(c, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		writeError(c, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	filters := &repository.ReportFilters{
		Keyword: c.Query("keyword"),
		Limit:   limit,
		Offset:  offset,
	}

	items, total, err := h.service.ListReports(c.Request.Context(), filters)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *AnalysisHandler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	path := c.Request.URL.Path

	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("Validation error", zap.Error(err), zap.String("path", path))
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, quota.ErrQuotaExceeded):
		h.logger.Warn("Quota exhausted", zap.Error(err), zap.String("path", path))
		writeError(c, http.StatusTooManyRequests, "Daily API quota exhausted")
	case errors.Is(err, collector.ErrRemoteCall):
		h.logger.Error("Remote API failure", zap.Error(err), zap.String("path", path))
		writeError(c, http.StatusBadGateway, "YouTube API request failed")
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "Report not found")
	case errors.Is(err, service.ErrStorageDisabled):
		writeError(c, http.StatusServiceUnavailable, "Report storage is not enabled")
	case errors.Is(err, context.Canceled):
		h.logger.Info("Client cancelled request", zap.String("path", path))
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("Request timed out", zap.Error(err), zap.String("path", path))
		writeError(c, http.StatusGatewayTimeout, "Analysis timed out")
	default:
		h.logger.Error("Unexpected error", zap.Error(err), zap.String("path", path))
		writeError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
