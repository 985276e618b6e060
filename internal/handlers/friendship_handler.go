package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/notifier"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipHandler handles the friend-request state machine between two
// user documents. The two sides of a pair are written one document at a time;
// the target side carries the duplicate guard, and the notification is always
// staged last so a partial failure can only lose the side effect, never
// corrupt the friends/requests invariants.
type FriendshipHandler struct {
	userRepository repositories.UserRepository
	notifier       *notifier.Notifier
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(userRepo repositories.UserRepository, n *notifier.Notifier) *FriendshipHandler {
	return &FriendshipHandler{
		userRepository: userRepo,
		notifier:       n,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/users/:id/friend", h.SendFriendRequest)
	g.POST("/users/:id/friend/accept", h.AcceptFriendRequest)
	g.POST("/users/:id/friend/reject", h.RejectFriendRequest)
	g.GET("/users/:id/full", h.GetFullProfile)
}

// SendFriendRequest handles sending a friend request to the user in the path
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	ctx := c.Request().Context()
	senderID := getUserIDFromContext(c)
	if senderID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == senderID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a friend request to yourself")
	}

	if _, err := h.userRepository.GetUserByID(ctx, senderID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	// The guarded push on the target is the duplicate check: it only matches
	// when the pair is neither friends nor already requested.
	if err := h.userRepository.PushFriendRequest(ctx, targetID, senderID, models.FriendRequestReceived); err != nil {
		if err == repositories.ErrConflict {
			return echo.NewHTTPError(http.StatusConflict, "Request already sent or already friends")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Mirror entry on the sender. A conflict here means a concurrent call
	// already wrote it; the pair state is still consistent.
	if err := h.userRepository.PushFriendRequest(ctx, senderID, targetID, models.FriendRequestSent); err != nil && err != repositories.ErrConflict {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, targetID, &senderID, models.NotificationFriendRequest,
		"sent you a friend request", &senderID)

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request sent"})
}

// AcceptFriendRequest makes the authenticated user and the requester in the
// path friends on both documents and clears the pair's pending entries.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	ctx := c.Request().Context()
	accepterID := getUserIDFromContext(c)
	if accepterID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requesterID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if _, err := h.userRepository.GetUserByID(ctx, requesterID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := h.userRepository.AddFriend(ctx, accepterID, requesterID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.AddFriend(ctx, requesterID, accepterID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(ctx, requesterID, &accepterID, models.NotificationFriendRequest,
		"accepted your friend request", &accepterID)

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request accepted"})
}

// RejectFriendRequest clears the pair's pending entries on both documents.
// The friends sets are untouched and no notification is sent.
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	ctx := c.Request().Context()
	rejecterID := getUserIDFromContext(c)
	if rejecterID.IsZero() {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requesterID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.userRepository.PullFriendRequest(ctx, rejecterID, requesterID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.PullFriendRequest(ctx, requesterID, rejecterID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request removed"})
}

// GetFullProfile returns a user with friends and outstanding request entries
func (h *FriendshipHandler) GetFullProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}
