// Package food exposes the resolution pipeline over HTTP: full resolve,
// plus the candidate, portion and hydration steps as standalone endpoints.
package food

import (
	"net/http"
	"strings"

	"food-resolver/internal/core/portion"
	"food-resolver/internal/core/resolve"
	"food-resolver/internal/core/search"
	"food-resolver/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the food resolution endpoints.
type Handler struct {
	service *resolve.Service
}

// NewHandler creates the food handler.
func NewHandler(service *resolve.Service) *Handler {
	return &Handler{service: service}
}

// HandleResolve runs the full pipeline for a free-text food description.
func (h *Handler) HandleResolve(c *gin.Context) {
	var req resolve.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required", nil)
		return
	}

	result := h.service.Resolve(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{
		"resolution_id": uuid.NewString(),
		"result":        result,
	})
}

type candidatesRequest struct {
	Query                  string `json:"query"`
	PreferGeneric          *bool  `json:"prefer_generic,omitempty"`
	RequireCoreToken       *bool  `json:"require_core_token,omitempty"`
	DisableBrandInterleave bool   `json:"disable_brand_interleave,omitempty"`
	AllowMoreBrands        bool   `json:"allow_more_brands,omitempty"`
	Source                 string `json:"source,omitempty"`
}

// HandleCandidates returns ranked candidates and the disambiguation flag.
func (h *Handler) HandleCandidates(c *gin.Context) {
	var req candidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(c, "query is required", nil)
		return
	}

	opts := search.DefaultOptions()
	if req.PreferGeneric != nil {
		opts.PreferGeneric = *req.PreferGeneric
	}
	if req.RequireCoreToken != nil {
		opts.RequireCoreToken = *req.RequireCoreToken
	}
	opts.DisableBrandInterleave = req.DisableBrandInterleave
	opts.AllowMoreBrands = req.AllowMoreBrands
	if req.Source != "" {
		opts.Source = req.Source
	}

	candidates, needsPicker := h.service.Candidates(c.Request.Context(), req.Query, opts)

	c.JSON(http.StatusOK, gin.H{
		"candidates":           candidates,
		"needs_disambiguation": needsPicker,
	})
}

type portionRequest struct {
	FoodName            string  `json:"food_name"`
	Category            string  `json:"category,omitempty"`
	OCRText             string  `json:"ocr_text,omitempty"`
	OCRGrams            float64 `json:"ocr_grams,omitempty"`
	UserPreferenceGrams float64 `json:"user_preference_grams,omitempty"`
	NutritionRatioGrams float64 `json:"nutrition_ratio_grams,omitempty"`
	Count               float64 `json:"count,omitempty"`
	CountUnit           string  `json:"count_unit,omitempty"`
}

// HandlePortion infers a portion for a named food.
func (h *Handler) HandlePortion(c *gin.Context) {
	var req portionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.FoodName) == "" {
		badRequest(c, "food_name is required", nil)
		return
	}

	estimate := h.service.Portion(req.FoodName, req.Category, portion.Signals{
		OCRGrams:            req.OCRGrams,
		OCRText:             req.OCRText,
		UserPreferenceGrams: req.UserPreferenceGrams,
		NutritionRatioGrams: req.NutritionRatioGrams,
		Count:               req.Count,
		CountUnit:           req.CountUnit,
	})

	c.JSON(http.StatusOK, gin.H{"portion": estimate})
}

// HandleHydrate hydrates a chosen food item into a per-gram macro profile.
func (h *Handler) HandleHydrate(c *gin.Context) {
	var item common.FoodItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if strings.TrimSpace(item.Title) == "" {
		badRequest(c, "title is required", nil)
		return
	}

	result := h.service.Hydrate(c.Request.Context(), item)

	c.JSON(http.StatusOK, gin.H{"hydration": result})
}

func badRequest(c *gin.Context, message string, err error) {
	if err != nil {
		common.LogWarn("rejected request",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(http.StatusBadRequest, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: message,
	})
}
