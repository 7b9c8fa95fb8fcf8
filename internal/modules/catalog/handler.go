package catalog

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/response"
	"reservehub/internal/pkg/validator"
	"reservehub/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	services := v1.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/options", h.ListOptions)
		services.GET("/:id", h.GetService)
	}
	v1.GET("/service-status", h.GetStatus)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	services := admin.Group("/services")
	{
		services.GET("", h.AdminListServices)
		services.POST("", h.CreateService)
		services.PUT("/:id", h.UpdateService)
		services.DELETE("/:id", h.DeleteService)
		services.POST("/:id/options", h.CreateOption)
		services.PUT("/:id/options/:option_id", h.UpdateOption)
		services.DELETE("/:id/options/:option_id", h.DeleteOption)
	}
	admin.PUT("/service-status", h.UpdateStatus)
}

/* ---------- PUBLIC ---------- */

// ListServices handles GET /services. Unparseable filters are ignored.
func (h *Handler) ListServices(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), parseFilter(c), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err, "Failed to list services")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) ListOptions(c *gin.Context) {
	options, err := h.service.OptionsByType(c.Request.Context(), domain.ServiceType(c.Query("type")))
	if err != nil {
		h.fail(c, err, "Failed to list options")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"options": options})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load service")
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) GetStatus(c *gin.Context) {
	st, err := h.service.Status(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load service status")
		return
	}
	response.Success(c, http.StatusOK, st)
}

/* ---------- ADMIN ---------- */

func (h *Handler) AdminListServices(c *gin.Context) {
	services, err := h.service.AdminList(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to list services")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": services})
}

func (h *Handler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if !bind(c, &req) {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to create service")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ServiceRequest
	if !bind(c, &req) {
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to update service")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete service")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Service deleted"})
}

func (h *Handler) CreateOption(c *gin.Context) {
	serviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req OptionRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.service.CreateOption(c.Request.Context(), serviceID, req)
	if err != nil {
		h.fail(c, err, "Failed to create option")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"option": o})
}

func (h *Handler) UpdateOption(c *gin.Context) {
	serviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	optionID, ok := pathID(c, "option_id")
	if !ok {
		return
	}
	var req OptionRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.service.UpdateOption(c.Request.Context(), serviceID, optionID, req)
	if err != nil {
		h.fail(c, err, "Failed to update option")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"option": o})
}

func (h *Handler) DeleteOption(c *gin.Context) {
	serviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	optionID, ok := pathID(c, "option_id")
	if !ok {
		return
	}
	if err := h.service.DeleteOption(c.Request.Context(), serviceID, optionID); err != nil {
		h.fail(c, err, "Failed to delete option")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Option deleted"})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if !bind(c, &req) {
		return
	}
	st, err := h.service.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to update service status")
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrOptionMismatch):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Option not found for this service")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
	case errors.Is(err, ErrInvalidWindow):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "available_from must not be after available_to")
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, fallback)
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(c, details)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func parseFilter(c *gin.Context) repository.ServiceFilter {
	var f repository.ServiceFilter

	if t := domain.ServiceType(c.Query("type")); t.Valid() {
		f.Type = t
	}
	f.Location = strings.TrimSpace(c.Query("location"))

	if v := c.Query("price"); v != "" {
		// fractional prices round down to the whole unit
		if p, err := strconv.ParseFloat(v, 64); err == nil && p >= 0 && !math.IsInf(p, 0) {
			max := int64(math.Floor(p))
			f.MaxPrice = &max
		}
	}
	if v := c.Query("option"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			f.OptionID = id
		}
	}

	in, inErr := time.ParseInLocation(dateLayout, c.Query("check_in"), time.UTC)
	out, outErr := time.ParseInLocation(dateLayout, c.Query("check_out"), time.UTC)
	if inErr == nil && outErr == nil && !in.After(out) {
		f.CheckIn, f.CheckOut = &in, &out
	}
	return f
}
