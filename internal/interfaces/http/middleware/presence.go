package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PresenceToucher records user activity
type PresenceToucher interface {
	TouchPresence(ctx context.Context, userID uuid.UUID)
}

// Presence records activity for the authenticated user once the request has
// been handled. It must run after JWTAuth.
func Presence(toucher PresenceToucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if userID := GetJWTUserID(c); userID != uuid.Nil {
			toucher.TouchPresence(c.Request.Context(), userID)
		}
	}
}
