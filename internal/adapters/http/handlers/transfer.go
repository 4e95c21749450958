package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
)

// HeaderExportCount carries the number of exported records.
const HeaderExportCount = "X-Export-Count"

// TransferHandler serves collection export and import.
type TransferHandler struct {
	service *app.QuoteService
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(service *app.QuoteService) *TransferHandler {
	return &TransferHandler{service: service}
}

// Export handles GET /api/v1/export. The collection is returned as a JSON
// attachment named quotes_export_<timestamp>.json.
//
// @Summary Download the collection
// @Tags transfer
// @Produce json
// @Success 200 {array} domain.Quote
// @Router /api/v1/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header(HeaderExportCount, strconv.Itoa(file.Count))
	c.Data(http.StatusOK, "application/json; charset=utf-8", file.Data)
}

// Import handles POST /api/v1/import. The body is the raw JSON array
// document, bounded by the server's max request size.
//
// @Summary Merge a JSON document into the collection
// @Tags transfer
// @Accept json
// @Produce json
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/v1/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	doc, err := io.ReadAll(c.Request.Body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.Import(c.Request.Context(), doc)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Added:      result.Added,
		Count:      len(result.Added),
		Duplicates: result.Duplicates,
		Invalid:    result.Invalid,
	})
}

// RegisterTransferRoutes registers export and import routes.
func (h *TransferHandler) RegisterTransferRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
