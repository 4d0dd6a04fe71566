package ingredient

import (
	"context"
	"fmt"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/numerator"
	"kitchenledger/internal/core/types"
	"kitchenledger/pkg/logger"
)

// Auditor records catalog edits. Implemented by postgres.AuditService.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service provides business logic for the ingredient catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	auditor   Auditor // optional
}

// NewService creates a new ingredient service.
func NewService(repo Repository, num numerator.Generator, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		auditor:   auditor,
	}
}

// Create validates and persists a new ingredient.
// A code is generated when none is provided; names must be unique because
// order ingestion resolves ingredients by name.
func (s *Service) Create(ctx context.Context, ing *Ingredient) error {
	if err := ing.Validate(ctx); err != nil {
		return err
	}

	if ing.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("ING"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		ing.Code = code
	}

	if existing, err := s.repo.FindByName(ctx, ing.Name); err == nil && existing.ID != ing.ID {
		return apperror.NewDuplicate("ingredient", "name", ing.Name)
	}

	if err := s.repo.Create(ctx, ing); err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}

	s.audit(ctx, ing.ID, "create", map[string]any{"name": ing.Name, "code": ing.Code})
	logger.Info(ctx, "ingredient created", "id", ing.ID, "code", ing.Code, "name", ing.Name)
	return nil
}

// Update validates and persists changes to an ingredient.
func (s *Service) Update(ctx context.Context, ing *Ingredient) error {
	if err := ing.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByName(ctx, ing.Name); err == nil && existing.ID != ing.ID {
		return apperror.NewDuplicate("ingredient", "name", ing.Name)
	}

	ing.Touch()
	if err := s.repo.Update(ctx, ing); err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	s.audit(ctx, ing.ID, "update", map[string]any{"name": ing.Name})
	return nil
}

// Delete soft-deletes an ingredient. Ledger rows referencing it remain valid.
func (s *Service) Delete(ctx context.Context, ingID id.ID) error {
	if err := s.repo.Delete(ctx, ingID); err != nil {
		return err
	}
	s.audit(ctx, ingID, "delete", nil)
	return nil
}

// GetByID retrieves an ingredient.
func (s *Service) GetByID(ctx context.Context, ingID id.ID) (*Ingredient, error) {
	return s.repo.GetByID(ctx, ingID)
}

// FindByName retrieves an ingredient by exact name.
func (s *Service) FindByName(ctx context.Context, name string) (*Ingredient, error) {
	return s.repo.FindByName(ctx, name)
}

// List retrieves ingredients with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Ingredient, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// Restock increases on-hand stock by a positive delta.
func (s *Service) Restock(ctx context.Context, ingID id.ID, delta types.Quantity) error {
	if !delta.IsPositive() {
		return apperror.NewValidation("restock quantity must be positive").
			WithDetail("quantity", delta.String())
	}

	if err := s.repo.AdjustOnHand(ctx, ingID, delta); err != nil {
		return fmt.Errorf("adjust on-hand: %w", err)
	}

	logger.Info(ctx, "ingredient restocked", "id", ingID, "delta", delta.String())
	return nil
}

func (s *Service) audit(ctx context.Context, ingID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, "ingredient", ingID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity", "ingredient", "id", ingID, "error", err)
	}
}
