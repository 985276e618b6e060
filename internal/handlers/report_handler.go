package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/notifier"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReportHandler handles moderation reports. A report's action only moves
// forward from none; re-resolving is rejected and leaves the record unchanged.
type ReportHandler struct {
	reportRepository repositories.ReportRepository
	auditRepository  repositories.AuditRepository
	notifier         *notifier.Notifier
	logger           *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportRepo repositories.ReportRepository, auditRepo repositories.AuditRepository, n *notifier.Notifier, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportRepository: reportRepo,
		auditRepository:  auditRepo,
		notifier:         n,
		logger:           logger,
	}
}

// RegisterReportRoutes registers report-related routes
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.GET("/reports", h.GetReports)
	g.POST("/reports/:id/resolve", h.ResolveReport)
}

// GetReports lists all reports, newest first
func (h *ReportHandler) GetReports(c echo.Context) error {
	reports, err := h.reportRepository.GetReports(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reports)
}

// ResolveReport records the moderation action taken on a report and tells
// the reporter about it.
func (h *ReportHandler) ResolveReport(c echo.Context) error {
	ctx := c.Request().Context()
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report ID")
	}

	var req models.ResolveReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := h.reportRepository.Resolve(ctx, reportID, req.Action)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Report not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Action has already been taken on this report")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, report.UserID, &adminID, models.NotificationReportUpdate,
		fmt.Sprintf("Action has been taken on your report: %s", req.Action), &report.ID)

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "report_resolved",
		TargetType: "report",
		TargetID:   report.ID.Hex(),
		Detail:     req.Action,
	})

	return c.JSON(http.StatusOK, report)
}
