package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/middleware"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/service"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

type searchService interface {
	SearchArticles(ctx context.Context, query string) ([]models.ArticleDetail, bool, error)
	SearchByPractice(ctx context.Context, practice string) ([]models.EvidenceDetail, bool, error)
	SearchByClaim(ctx context.Context, claim string) ([]models.EvidenceDetail, bool, error)
	SearchAdvanced(ctx context.Context, filter models.AdvancedSearchFilter) ([]models.EvidenceDetail, bool, error)
}

type searchExporter interface {
	ExportAdvanced(ctx context.Context, filter models.AdvancedSearchFilter, format string) (*service.ExportFile, error)
}

// SearchHandler exposes read-only search endpoints. A nil exporter disables export.
type SearchHandler struct {
	service  searchService
	exporter searchExporter
}

// NewSearchHandler builds a new handler.
func NewSearchHandler(service searchService, exporter searchExporter) *SearchHandler {
	return &SearchHandler{service: service, exporter: exporter}
}

// Articles godoc
// @Summary Free-text article search
// @Description Matches title or abstract of analyzed and published articles. A blank query returns an empty list.
// @Tags Search
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /search/articles [get]
func (h *SearchHandler) Articles(c *gin.Context) {
	items, hit, err := h.service.SearchArticles(c.Request.Context(), c.Query("q"))
	h.respond(c, items, hit, err)
}

// Practice godoc
// @Summary Evidence by SE practice
// @Tags Search
// @Produce json
// @Param practice query string true "Exact practice name"
// @Success 200 {object} response.Envelope
// @Router /search/se-practice [get]
func (h *SearchHandler) Practice(c *gin.Context) {
	items, hit, err := h.service.SearchByPractice(c.Request.Context(), c.Query("practice"))
	h.respond(c, items, hit, err)
}

// Claim godoc
// @Summary Evidence by claim substring
// @Tags Search
// @Produce json
// @Param claim query string true "Claim text"
// @Success 200 {object} response.Envelope
// @Router /search/claim [get]
func (h *SearchHandler) Claim(c *gin.Context) {
	items, hit, err := h.service.SearchByClaim(c.Request.Context(), c.Query("claim"))
	h.respond(c, items, hit, err)
}

// Advanced godoc
// @Summary Advanced evidence search
// @Tags Search
// @Produce json
// @Param q query string false "Title or abstract text"
// @Param sePractice query string false "Exact practice"
// @Param claim query string false "Claim substring"
// @Param yearFrom query int false "Earliest publication year"
// @Param yearTo query int false "Latest publication year"
// @Param evidenceResult query string false "supports, opposes or neutral"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /search/advanced [get]
func (h *SearchHandler) Advanced(c *gin.Context) {
	query, ok := bindAdvancedQuery(c)
	if !ok {
		return
	}
	items, hit, err := h.service.SearchAdvanced(c.Request.Context(), query.Filter())
	h.respond(c, items, hit, err)
}

// Export godoc
// @Summary Export advanced search results
// @Tags Search
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param q query string false "Title or abstract text"
// @Param sePractice query string false "Exact practice"
// @Param claim query string false "Claim substring"
// @Param yearFrom query int false "Earliest publication year"
// @Param yearTo query int false "Latest publication year"
// @Param evidenceResult query string false "supports, opposes or neutral"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /search/advanced/export [get]
func (h *SearchHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	query, ok := bindAdvancedQuery(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportAdvanced(c.Request.Context(), query.Filter(), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Rows, file.Data)
}

func (h *SearchHandler) respond(c *gin.Context, data interface{}, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}

func bindAdvancedQuery(c *gin.Context) (dto.AdvancedSearchQuery, bool) {
	var query dto.AdvancedSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search parameters"))
		return query, false
	}
	return query, true
}
