package review

import (
	"errors"
	"net/http"
	"strconv"

	"reservehub/internal/modules/ledger"
	"reservehub/internal/pkg/response"
	"reservehub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/services/:id/reviews", h.Create)
	protected.GET("/reviews/mine", h.ListMine)
	protected.DELETE("/reviews/:id", h.Delete)
}

// Create leaves a review on a service and credits the reward.
// @Summary		Write a review
// @Tags		Reviews
// @Security	BearerAuth
// @Param		id		path	int					true	"Service ID"
// @Param		request	body	CreateReviewRequest	true	"Rating (1-5, default 5) and comment"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/services/{id}/reviews [POST]
func (h *Handler) Create(c *gin.Context) {
	serviceID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(c, details)
		return
	}

	res, err := h.svc.Create(c.Request.Context(), c.GetInt64("user_id"), serviceID, req)
	if err != nil {
		h.fail(c, err, "Failed to create review")
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	reviews, err := h.svc.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err, "Failed to list reviews")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// Delete removes the caller's own review and takes the reward back.
// @Summary		Delete a review
// @Tags		Reviews
// @Security	BearerAuth
// @Param		id	path	int	true	"Review ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}	"Balance too low to take the reward back"
// @Router		/reviews/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.fail(c, err, "Failed to delete review")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only delete your own reviews")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_BALANCE", "Not enough points to remove this review")
	default:
		response.Internal(c, fallback)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
