package review

import (
	"time"

	"reservehub/internal/domain"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment string `json:"comment" binding:"required" validate:"required,max=5000"`
}

// Result is a review together with the owner's balance after the points moved.
type Result struct {
	Review  *domain.Review `json:"review"`
	Points  int64          `json:"points"`
	Balance int64          `json:"balance"`
}

type MyReview struct {
	ID          int64     `json:"id"`
	ServiceID   int64     `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}
