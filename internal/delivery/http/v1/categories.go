package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reminders/internal/model"
	"reminders/internal/service"
)

type getCategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	ColorName string `json:"colorName,omitempty"`
	IsDefault bool   `json:"isDefault"`
	SortOrder int    `json:"sortOrder"`
}

func newGetCategoryResponse(category *model.Category) getCategoryResponse {
	return getCategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Icon:      category.Icon,
		ColorName: category.ColorName,
		IsDefault: category.IsDefault,
		SortOrder: category.SortOrder,
	}
}

func (h *handlerImpl) HandleListCategories(c *gin.Context) {
	categories, err := h.categories.List(c)
	if err != nil {
		h.abortWithError(c, err, "failed to list categories")
		return
	}

	out := make([]getCategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, newGetCategoryResponse(category))
	}
	c.JSON(http.StatusOK, out)
}

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required,max=64"`
	Icon      string `json:"icon"`
	ColorName string `json:"colorName"`
}

func (h *handlerImpl) HandleCreateCategory(c *gin.Context) {
	var req createCategoryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	category, err := h.categories.Create(c, service.CategoryInput{
		Name:      req.Name,
		Icon:      req.Icon,
		ColorName: req.ColorName,
	})
	if err != nil {
		h.abortWithError(c, err, "failed to create category")
		return
	}

	h.logger.Info().Str("id", category.ID).Msg("created category")
	c.JSON(http.StatusCreated, newGetCategoryResponse(category))
}

func (h *handlerImpl) HandleDeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c, c.Param("id")); err != nil {
		h.abortWithError(c, err, "failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
