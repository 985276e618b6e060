package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrganizationHandler handles organization verification
type OrganizationHandler struct {
	organizationRepository repositories.OrganizationRepository
	auditRepository        repositories.AuditRepository
	logger                 *zap.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgRepo repositories.OrganizationRepository, auditRepo repositories.AuditRepository, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		organizationRepository: orgRepo,
		auditRepository:        auditRepo,
		logger:                 logger,
	}
}

// RegisterOrganizationRoutes registers organization routes
func (h *OrganizationHandler) RegisterOrganizationRoutes(g *echo.Group) {
	g.GET("/organizations/admin/pending", h.GetPendingOrganizations)
	g.POST("/organizations/:id/approve", h.ApproveOrganization)
}

// GetPendingOrganizations lists organizations awaiting verification
func (h *OrganizationHandler) GetPendingOrganizations(c echo.Context) error {
	orgs, err := h.organizationRepository.GetPendingOrganizations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orgs)
}

// ApproveOrganization verifies a pending organization
func (h *OrganizationHandler) ApproveOrganization(c echo.Context) error {
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	orgID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid organization ID")
	}

	org, err := h.organizationRepository.Approve(c.Request().Context(), orgID)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Organization not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Organization is not pending")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "organization_approved",
		TargetType: "organization",
		TargetID:   org.ID.Hex(),
	})

	return c.JSON(http.StatusOK, org)
}
