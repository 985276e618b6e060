package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/notifier"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestHandler handles interest registration on resource requests
type RequestHandler struct {
	requestRepository repositories.RequestRepository
	notifier          *notifier.Notifier
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(requestRepo repositories.RequestRepository, n *notifier.Notifier) *RequestHandler {
	return &RequestHandler{
		requestRepository: requestRepo,
		notifier:          n,
	}
}

// RegisterRequestRoutes registers request-related routes
func (h *RequestHandler) RegisterRequestRoutes(g *echo.Group) {
	g.GET("/requests/:id", h.GetRequest)
	g.POST("/requests/:id/fulfill", h.RegisterInterest)
}

// GetRequest returns a single request with its fulfillments
func (h *RequestHandler) GetRequest(c echo.Context) error {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.requestRepository.GetRequestByID(c.Request().Context(), requestID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, request)
}

// RegisterInterest records the caller's interest in a request, at most once
// per user, and notifies the owner unless the caller owns the request.
func (h *RequestHandler) RegisterInterest(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	if userID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.requestRepository.AddFulfillment(ctx, requestID, userID)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Request not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "You have already contacted this request")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if request.UserID != userID {
		h.notifier.Notify(ctx, request.UserID, &userID, models.NotificationRequestFulfillment,
			fmt.Sprintf("has contacted you regarding your request: %s", request.Title), &request.ID)
	}

	return c.JSON(http.StatusOK, request)
}
