package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationHandler handles donation submission and verification. A donation is
// always created pending; the campaign's raised total changes only on the
// pending -> verified flip, which the repository guards so re-verification can
// never credit the aggregate twice.
type DonationHandler struct {
	donationRepository repositories.DonationRepository
	campaignRepository repositories.CampaignRepository
}

// NewDonationHandler creates a new DonationHandler
func NewDonationHandler(donationRepo repositories.DonationRepository, campaignRepo repositories.CampaignRepository) *DonationHandler {
	return &DonationHandler{
		donationRepository: donationRepo,
		campaignRepository: campaignRepo,
	}
}

// RegisterDonationRoutes registers donation-related routes
func (h *DonationHandler) RegisterDonationRoutes(g *echo.Group) {
	g.POST("/campaigns/:id/donate", h.SubmitDonation)
	g.GET("/campaigns/:id/donations", h.GetDonations)
	g.POST("/campaigns/:id/donations/:donationId/verify", h.VerifyDonation)
	g.POST("/campaigns/:id/donations/:donationId/reject", h.RejectDonation)
}

// SubmitDonation records a pledged donation in pending state
func (h *DonationHandler) SubmitDonation(c echo.Context) error {
	ctx := c.Request().Context()
	donorID := getUserIDFromContext(c)
	if donorID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	var req models.SubmitDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Amount <= 0 && req.ItemType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Either an amount or an item type is required")
	}

	if _, err := h.campaignRepository.GetCampaignByID(ctx, campaignID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	donation := &models.Donation{
		CampaignID: campaignID,
		UserID:     donorID,
		Amount:     req.Amount,
		ItemType:   req.ItemType,
		Receipt:    req.Receipt,
	}
	if err := h.donationRepository.CreateDonation(ctx, donation); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, donation)
}

// GetDonations lists a campaign's donations; owner only
func (h *DonationHandler) GetDonations(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	if currentUserID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	campaign, err := h.campaignRepository.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if campaign.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the campaign owner may view donations")
	}

	donations, err := h.donationRepository.GetDonationsByCampaign(ctx, campaignID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, donations)
}

// VerifyDonation flips a pending donation to verified and credits the
// campaign's raised total with its amount, exactly once.
func (h *DonationHandler) VerifyDonation(c echo.Context) error {
	return h.settleDonation(c, models.DonationStatusVerified)
}

// RejectDonation flips a pending donation to rejected; the aggregate is untouched
func (h *DonationHandler) RejectDonation(c echo.Context) error {
	return h.settleDonation(c, models.DonationStatusRejected)
}

func (h *DonationHandler) settleDonation(c echo.Context, status string) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	if currentUserID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}
	donationID, err := primitive.ObjectIDFromHex(c.Param("donationId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid donation ID")
	}

	campaign, err := h.campaignRepository.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Campaign not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if campaign.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the campaign owner may verify donations")
	}

	var donation *models.Donation
	if status == models.DonationStatusVerified {
		donation, err = h.donationRepository.MarkVerified(ctx, campaignID, donationID)
	} else {
		donation, err = h.donationRepository.MarkRejected(ctx, campaignID, donationID)
	}
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Donation not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "Donation is not pending")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if status == models.DonationStatusVerified && donation.Amount > 0 {
		// The guarded flip above succeeded at most once for this donation,
		// so this increment runs at most once for it.
		if err := h.campaignRepository.IncrementRaised(ctx, campaignID, donation.Amount); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		campaign.Raised += donation.Amount
	}

	return c.JSON(http.StatusOK, echo.Map{
		"campaign": campaign,
		"donation": donation,
	})
}
