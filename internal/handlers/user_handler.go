package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserHandler handles user profile and administration requests
type UserHandler struct {
	userRepository  repositories.UserRepository
	auditRepository repositories.AuditRepository
	logger          *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, auditRepo repositories.AuditRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userRepository:  userRepo,
		auditRepository: auditRepo,
		logger:          logger,
	}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetUser)
}

// RegisterAdminUserRoutes registers admin-only user routes
func (h *UserHandler) RegisterAdminUserRoutes(g *echo.Group) {
	g.POST("/users/:id/ban", h.ToggleBan)
}

// GetUser returns a compact user profile
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user.ToCompact())
}

// ToggleBan flips a user between active and banned
func (h *UserHandler) ToggleBan(c echo.Context) error {
	adminID := getUserIDFromContext(c)
	if adminID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.ToggleBan(c.Request().Context(), userID)
	if err != nil {
		switch err {
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case repositories.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "User status changed concurrently")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	recordAudit(h.auditRepository, h.logger, &models.AuditRecord{
		AdminID:    adminID.Hex(),
		Action:     "user_ban_toggled",
		TargetType: "user",
		TargetID:   user.ID.Hex(),
		Detail:     user.Status,
	})

	return c.JSON(http.StatusOK, user)
}
