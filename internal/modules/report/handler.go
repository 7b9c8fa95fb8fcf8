package report

import (
	"bytes"
	"io"
	"net/http"

	"reservehub/internal/pkg/logger"
	"reservehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	reports := admin.Group("/reports")
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/summary.csv", h.SummaryCSV)
		reports.GET("/summary.pdf", h.SummaryPDF)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.service.Summary(c.Request.Context())
	if err != nil {
		logger.ErrorContext(c.Request.Context(), "report summary failed", "error", err)
		response.Internal(c, "Failed to build summary")
		return
	}
	response.Success(c, http.StatusOK, sum)
}

func (h *Handler) SummaryCSV(c *gin.Context) {
	h.export(c, "text/csv; charset=utf-8", "data_summary.csv", WriteCSV)
}

func (h *Handler) SummaryPDF(c *gin.Context) {
	h.export(c, "application/pdf", "data_summary.pdf", WritePDF)
}

// export renders into a buffer first so a failure can still produce a JSON
// error instead of a truncated file.
func (h *Handler) export(c *gin.Context, contentType, filename string, write func(io.Writer, *Summary) error) {
	sum, err := h.service.Summary(c.Request.Context())
	if err != nil {
		logger.ErrorContext(c.Request.Context(), "report summary failed", "error", err)
		response.Internal(c, "Failed to build summary")
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, sum); err != nil {
		logger.ErrorContext(c.Request.Context(), "report export failed", "file", filename, "error", err)
		response.Internal(c, "Failed to export summary")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
