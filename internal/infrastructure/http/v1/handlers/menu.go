package handlers

import (
	"github.com/gin-gonic/gin"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/catalog/menu"
	"kitchenledger/internal/infrastructure/http/v1/dto"
)

// MenuHandler handles menu catalog endpoints.
type MenuHandler struct {
	*BaseHandler
	service *menu.Service
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(base *BaseHandler, service *menu.Service) *MenuHandler {
	return &MenuHandler{
		BaseHandler: base,
		service:     service,
	}
}

func parseRecipe(lines []dto.RecipeLineRequest) (menu.Recipe, error) {
	recipe := make(menu.Recipe, 0, len(lines))
	for _, line := range lines {
		ingID, err := id.Parse(line.IngredientID)
		if err != nil {
			return nil, apperror.NewValidation("invalid recipe ingredient id").
				WithDetail("ingredientId", line.IngredientID)
		}
		recipe = append(recipe, menu.RecipeLine{
			IngredientID: ingID,
			Amount:       line.Amount,
		})
	}
	return recipe, nil
}

// Create handles POST /menu.
func (h *MenuHandler) Create(c *gin.Context) {
	var req dto.CreateMenuItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := menu.NewMenuItem(req.Code, req.Name, req.Category, req.Price)
	item.Description = req.Description

	recipe, err := parseRecipe(req.Recipe)
	if err != nil {
		h.Error(c, err)
		return
	}
	item.Recipe = recipe

	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item.ID.String())
}

// Get handles GET /menu/:id.
func (h *MenuHandler) Get(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid menu item id"))
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMenuItem(item))
}

// List handles GET /menu.
func (h *MenuHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := menu.ListFilter{
		Search:         q.Search,
		Category:       q.Category,
		IncludeDeleted: q.IncludeDeleted,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromMenuItems(items),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update handles PUT /menu/:id.
func (h *MenuHandler) Update(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid menu item id"))
		return
	}

	var req dto.UpdateMenuItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Recipe != nil {
		recipe, err := parseRecipe(*req.Recipe)
		if err != nil {
			h.Error(c, err)
			return
		}
		item.Recipe = recipe
	}

	if err := h.service.Update(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMenuItem(item))
}

// Delete handles DELETE /menu/:id.
func (h *MenuHandler) Delete(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid menu item id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// UploadImage handles POST /menu/:id/image (multipart form, field "image").
func (h *MenuHandler) UploadImage(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid menu item id"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		h.Error(c, apperror.NewValidation("image file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read image file"))
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(c.Request.Context(), itemID, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"imageUrl": url})
}
