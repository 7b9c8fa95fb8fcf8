package middleware

import (
	"context"
	"errors"
	"net/http"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/logger"
	"reservehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ActiveUser runs after JWTAuth. It rejects tokens whose account was deleted
// or deactivated and replaces the role claim with the stored one.
func ActiveUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		if userID == 0 {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Account no longer exists")
				return
			}
			logger.ErrorContext(c.Request.Context(), "active user lookup failed", "error", err)
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if !user.IsActive {
			response.Abort(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is not active")
			return
		}

		c.Set("role", string(user.Role()))
		c.Next()
	}
}
