package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"reservehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the ledger endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me/transactions", h.ListMyTransactions)
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Internal(c, "Failed to load balance")
		return
	}

	txns, total, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Internal(c, "Failed to list transactions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"balance":      balance,
		"transactions": txns,
		"total":        total,
	})
}
