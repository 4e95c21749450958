package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// QuoteHandler serves the local collection and the viewer preferences.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes[?category=].
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter; all when omitted"
// @Success 200 {object} dto.QuoteListResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	category := c.DefaultQuery("category", domain.CategoryAll)
	c.JSON(http.StatusOK, dto.NewQuoteListResponse(h.service.List(category)))
}

// CreateQuote handles POST /api/v1/quotes.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Quote"
// @Success 201 {object} domain.Quote
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.Add(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// GetRandomQuote handles GET /api/v1/quotes/random[?category=].
// Without a category the last chosen category is used.
//
// @Summary Show a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} domain.Quote
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	var query dto.RandomQuoteQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.RandomQuote(c.Request.Context(), query.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetLastViewed handles GET /api/v1/quotes/last.
//
// @Summary Last quote shown this session
// @Tags quotes
// @Produce json
// @Success 200 {object} domain.Quote
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/last [get]
func (h *QuoteHandler) GetLastViewed(c *gin.Context) {
	quote, err := h.service.LastViewed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// ListCategories handles GET /api/v1/categories.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: h.service.Categories()})
}

// GetCategoryPreference handles GET /api/v1/preferences/category.
func (h *QuoteHandler) GetCategoryPreference(c *gin.Context) {
	category, err := h.service.LastCategory(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryPreference{Category: category})
}

// PutCategoryPreference handles PUT /api/v1/preferences/category.
func (h *QuoteHandler) PutCategoryPreference(c *gin.Context) {
	var req dto.CategoryPreference
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if err := h.service.SetLastCategory(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// RegisterQuoteRoutes registers quote, category and preference routes.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.GET("/last", h.GetLastViewed)

	rg.GET("/categories", h.ListCategories)
	rg.GET("/preferences/category", h.GetCategoryPreference)
	rg.PUT("/preferences/category", h.PutCategoryPreference)
}
