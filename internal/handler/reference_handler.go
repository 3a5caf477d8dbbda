package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/utils"
)

// ReferenceHandler exposes the canonical reference datasets.
type ReferenceHandler struct {
	datasets  *dataset.Index
	threshold float64
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(datasets *dataset.Index, threshold float64) *ReferenceHandler {
	if threshold <= 0 {
		threshold = dataset.DefaultThreshold
	}
	return &ReferenceHandler{datasets: datasets, threshold: threshold}
}

// ListCategory handles GET /v1/reference/:category
func (h *ReferenceHandler) ListCategory(c *gin.Context) {
	category := c.Param("category")

	values := h.datasets.Category(category)
	if values == nil {
		utils.Error(c, 404, "CATEGORY_NOT_FOUND", "Unknown reference category: "+category)
		return
	}

	utils.Success(c, 200, "Reference data retrieved", gin.H{
		"category": category,
		"values":   values,
		"total":    len(values),
	})
}

// Match handles GET /v1/reference/match?category=&q=
func (h *ReferenceHandler) Match(c *gin.Context) {
	category := c.Query("category")
	query := c.Query("q")
	if category == "" || query == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "category and q query parameters are required")
		return
	}

	if h.datasets.Category(category) == nil {
		utils.Error(c, 404, "CATEGORY_NOT_FOUND", "Unknown reference category: "+category)
		return
	}

	match := h.datasets.FindBestMatch(query, category, h.threshold)

	utils.Success(c, 200, "Best match computed", gin.H{
		"category": category,
		"query":    query,
		"match":    match,
		"matched":  match != strings.ToUpper(strings.TrimSpace(query)),
	})
}
