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

// CampaignHandler handles the campaign review lifecycle. Transitions are
// status-guarded in the repository; approval attribution and status change in
// the same document update, and the owner notification is staged only after
// the campaign write succeeds.
type CampaignHandler struct {
	campaignRepository repositories.CampaignRepository
	userRepository     repositories.UserRepository
	auditRepository    repositories.AuditRepository
	notifier           *notifier.Notifier
	logger             *zap.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignRepo repositories.CampaignRepository, userRepo repositories.UserRepository, auditRepo repositories.AuditRepository, n *notifier.Notifier, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignRepository: campaignRepo,
		userRepository:     userRepo,
		auditRepository:    auditRepo,
		notifier:           n,
		logger:             logger,
	}
}

// RegisterCampaignRoutes registers campaign review routes
func (h *CampaignHandler) RegisterCampaignRoutes(g *echo.Group) {
	g.GET("/campaigns/admin/pending", h.GetPendingCampaigns)
	g.POST("/campaigns/:id/approve", h.ApproveCampaign)
	g.POST("/campaigns/:id/reject", h.RejectCampaign)
	g.POST("/campaigns/:id/revise", h.ReviseCampaign)
}

// GetPendingCampaigns lists campaigns awaiting review (pending or revision requested)
func (h *CampaignHandler) GetPendingCampaigns(c echo.Context) error {
	campaigns, err := h.campaignRepository.GetCampaignsUnderReview(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, campaigns)
}

// ApproveCampaign transitions a campaign under review to approved
func (h *CampaignHandler) ApproveCampaign(c echo.Context) error {
	ctx := c.Request().Context()
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	admin, err := h.userRepository.GetUserByID(ctx, adminID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reviewer not found")
	}

	campaign, err := h.campaignRepository.Approve(ctx, campaignID, adminID, admin.Name)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Campaign is no longer under review")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, campaign.UserID, &adminID, models.NotificationCampaignApproved,
		fmt.Sprintf("Your campaign %q has been approved by %s.", campaign.Name, admin.Name), &campaign.ID)

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "campaign_approved",
		TargetType: "campaign",
		TargetID:   campaign.ID.Hex(),
	})

	return c.JSON(http.StatusOK, campaign)
}

// RejectCampaign transitions a campaign under review to rejected
func (h *CampaignHandler) RejectCampaign(c echo.Context) error {
	ctx := c.Request().Context()
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	var req models.RejectCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.userRepository.GetUserByID(ctx, adminID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reviewer not found")
	}

	campaign, err := h.campaignRepository.Reject(ctx, campaignID, req.Reason)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Campaign is no longer under review")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, campaign.UserID, &adminID, models.NotificationCampaignRejected,
		fmt.Sprintf("Your campaign %q has been rejected: %s", campaign.Name, req.Reason), &campaign.ID)

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "campaign_rejected",
		TargetType: "campaign",
		TargetID:   campaign.ID.Hex(),
		Detail:     req.Reason,
	})

	return c.JSON(http.StatusOK, campaign)
}

// ReviseCampaign asks the owner to revise; repeatable, feedback replaced each time
func (h *CampaignHandler) ReviseCampaign(c echo.Context) error {
	ctx := c.Request().Context()
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	var req models.ReviseCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.userRepository.GetUserByID(ctx, adminID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reviewer not found")
	}

	campaign, err := h.campaignRepository.RequestRevision(ctx, campaignID, req.Feedback)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Campaign is no longer under review")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, campaign.UserID, &adminID, models.NotificationCampaignRevision,
		fmt.Sprintf("Action Required: Please revise your campaign %q. Admin feedback: %s", campaign.Name, req.Feedback), &campaign.ID)

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "campaign_revision_requested",
		TargetType: "campaign",
		TargetID:   campaign.ID.Hex(),
		Detail:     req.Feedback,
	})

	return c.JSON(http.StatusOK, campaign)
}
