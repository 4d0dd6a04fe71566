package handlers

import (
	"github.com/gin-gonic/gin"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/internal/infrastructure/http/v1/dto"
)

// IngredientHandler handles ingredient catalog endpoints.
type IngredientHandler struct {
	*BaseHandler
	service *ingredient.Service
}

// NewIngredientHandler creates a new ingredient handler.
func NewIngredientHandler(base *BaseHandler, service *ingredient.Service) *IngredientHandler {
	return &IngredientHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /ingredients.
func (h *IngredientHandler) Create(c *gin.Context) {
	var req dto.CreateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), ing); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, ing.ID.String())
}

// Get handles GET /ingredients/:id.
func (h *IngredientHandler) Get(c *gin.Context) {
	ingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid ingredient id"))
		return
	}

	ing, err := h.service.GetByID(c.Request.Context(), ingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromIngredient(ing))
}

// List handles GET /ingredients.
func (h *IngredientHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := ingredient.ListFilter{
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
		Items:      dto.FromIngredients(items),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update handles PUT /ingredients/:id.
func (h *IngredientHandler) Update(c *gin.Context) {
	ingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid ingredient id"))
		return
	}

	var req dto.UpdateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing, err := h.service.GetByID(c.Request.Context(), ingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(ing)
	if err := h.service.Update(c.Request.Context(), ing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromIngredient(ing))
}

// Delete handles DELETE /ingredients/:id.
func (h *IngredientHandler) Delete(c *gin.Context) {
	ingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid ingredient id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), ingID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Restock handles POST /ingredients/:id/restock.
func (h *IngredientHandler) Restock(c *gin.Context) {
	ingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid ingredient id"))
		return
	}

	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Restock(c.Request.Context(), ingID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "restocked")
}
