package menu

import (
	"context"
	"fmt"
	"io"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/numerator"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/pkg/logger"
)

// Auditor records catalog edits. Implemented by postgres.AuditService.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// ImageStore uploads menu item images and returns a public URL.
// Implemented by objectstore.Client.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Service provides business logic for the menu item catalog.
type Service struct {
	repo        Repository
	ingredients ingredient.Repository
	numerator   numerator.Generator
	auditor     Auditor    // optional
	images      ImageStore // optional
}

// NewService creates a new menu service.
func NewService(
	repo Repository,
	ingredients ingredient.Repository,
	num numerator.Generator,
	auditor Auditor,
	images ImageStore,
) *Service {
	return &Service{
		repo:        repo,
		ingredients: ingredients,
		numerator:   num,
		auditor:     auditor,
		images:      images,
	}
}

// Create validates and persists a new menu item.
// Recipe lines are enriched from the ingredient catalog before saving:
// the line carries a snapshot of the ingredient name, unit and cost so
// that later catalog edits do not rewrite history.
func (s *Service) Create(ctx context.Context, item *MenuItem) error {
	if err := s.enrichRecipe(ctx, item); err != nil {
		return err
	}
	if err := item.Validate(ctx); err != nil {
		return err
	}

	if item.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("MNU"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		item.Code = code
	}

	if existing, err := s.repo.FindByName(ctx, item.Name); err == nil && existing.ID != item.ID {
		return apperror.NewDuplicate("menu item", "name", item.Name)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}

	s.audit(ctx, item.ID, "create", map[string]any{"name": item.Name, "code": item.Code})
	logger.Info(ctx, "menu item created", "id", item.ID, "code", item.Code, "name", item.Name)
	return nil
}

// Update validates and persists changes to a menu item.
func (s *Service) Update(ctx context.Context, item *MenuItem) error {
	if err := s.enrichRecipe(ctx, item); err != nil {
		return err
	}
	if err := item.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByName(ctx, item.Name); err == nil && existing.ID != item.ID {
		return apperror.NewDuplicate("menu item", "name", item.Name)
	}

	item.Touch()
	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}

	s.audit(ctx, item.ID, "update", map[string]any{"name": item.Name})
	return nil
}

// Delete soft-deletes a menu item. Past orders referencing it remain valid.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}
	s.audit(ctx, itemID, "delete", nil)
	return nil
}

// GetByID retrieves a menu item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*MenuItem, error) {
	return s.repo.GetByID(ctx, itemID)
}

// FindByName retrieves a menu item by exact name.
func (s *Service) FindByName(ctx context.Context, name string) (*MenuItem, error) {
	return s.repo.FindByName(ctx, name)
}

// List retrieves menu items with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*MenuItem, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// UploadImage stores an item image in object storage and saves its URL.
func (s *Service) UploadImage(ctx context.Context, itemID id.ID, contentType string, body io.Reader) (string, error) {
	if s.images == nil {
		return "", apperror.NewBusinessRule("image_storage_unavailable", "image storage is not configured")
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("menu/%s", itemID)
	url, err := s.images.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	item.ImageURL = &url
	item.Touch()
	if err := s.repo.Update(ctx, item); err != nil {
		return "", fmt.Errorf("save image url: %w", err)
	}

	logger.Info(ctx, "menu item image uploaded", "id", itemID, "url", url)
	return url, nil
}

// enrichRecipe resolves each recipe line against the ingredient catalog
// and snapshots name, unit and line cost (unit cost x amount).
func (s *Service) enrichRecipe(ctx context.Context, item *MenuItem) error {
	for i := range item.Recipe {
		line := &item.Recipe[i]
		ing, err := s.ingredients.GetByID(ctx, line.IngredientID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("recipe references unknown ingredient").
					WithDetail("line", i).
					WithDetail("ingredientId", line.IngredientID)
			}
			return err
		}
		line.IngredientName = ing.Name
		line.Unit = ing.Unit
		line.TotalCost = ing.UnitCost.Mul(line.Amount.Decimal())
	}
	return nil
}

func (s *Service) audit(ctx context.Context, itemID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, "menu_item", itemID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity", "menu_item", "id", itemID, "error", err)
	}
}
