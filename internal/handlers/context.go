package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserIDFromContext returns the authenticated user's id, or the zero
// ObjectID when the context carries no valid claims.
func getUserIDFromContext(c echo.Context) primitive.ObjectID {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
