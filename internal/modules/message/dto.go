package message

type SendRequest struct {
	Subject        string  `json:"subject" binding:"required" validate:"required,max=255"`
	Content        string  `json:"content" binding:"required" validate:"required"`
	ReservationIDs []int64 `json:"reservation_ids" validate:"omitempty,dive,gt=0"`
}

type AdminSendRequest struct {
	UserID         int64   `json:"user_id" binding:"required" validate:"required,gt=0"`
	Subject        string  `json:"subject" binding:"required" validate:"required,max=255"`
	Content        string  `json:"content" binding:"required" validate:"required"`
	ReservationIDs []int64 `json:"reservation_ids" validate:"omitempty,dive,gt=0"`
}

type ReplyRequest struct {
	Response string `json:"response" binding:"required" validate:"required"`
}

type ReadRequest struct {
	IDs    []int64 `json:"ids" binding:"required" validate:"required,min=1,dive,gt=0"`
	IsRead *bool   `json:"is_read" binding:"required"`
}
