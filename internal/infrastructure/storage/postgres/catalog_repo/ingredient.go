// Package catalog_repo provides PostgreSQL implementations for the
// ingredient and menu item catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/internal/infrastructure/storage/postgres"
)

const ingredientTable = "cat_ingredients"

var ingredientColumns = []string{
	"id", "code", "name", "category", "unit", "unit_cost", "on_hand",
	"deletion_mark", "version", "created_at", "updated_at",
}

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewIngredientRepo creates a new ingredient repository.
func NewIngredientRepo(txm *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *IngredientRepo) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	q := r.builder.Insert(ingredientTable).
		Columns(ingredientColumns...).
		Values(
			ing.ID, ing.Code, ing.Name, ing.Category, ing.Unit,
			ing.UnitCost, ing.OnHand, ing.DeletionMark, ing.Version,
			ing.CreatedAt, ing.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ingredient: %w", err)
	}

	return nil
}

func (r *IngredientRepo) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	q := r.builder.Update(ingredientTable).
		Set("code", ing.Code).
		Set("name", ing.Name).
		Set("category", ing.Category).
		Set("unit", ing.Unit).
		Set("unit_cost", ing.UnitCost).
		Set("deletion_mark", ing.DeletionMark).
		Set("version", ing.Version).
		Set("updated_at", ing.UpdatedAt).
		Where(squirrel.Eq{"id": ing.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ing.ID.String())
	}

	return nil
}

func (r *IngredientRepo) Delete(ctx context.Context, ingID id.ID) error {
	q := r.builder.Update(ingredientTable).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ingID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ingID.String())
	}

	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, ingID id.ID) (*ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientTable).
		Where(squirrel.Eq{"id": ingID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ing ingredient.Ingredient
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ing, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingID.String())
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}

	return &ing, nil
}

func (r *IngredientRepo) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientTable).
		Where(squirrel.Eq{"name": name, "deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ing ingredient.Ingredient
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ing, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", name)
		}
		return nil, fmt.Errorf("find ingredient by name: %w", err)
	}

	return &ing, nil
}

func (r *IngredientRepo) List(ctx context.Context, filter ingredient.ListFilter) ([]*ingredient.Ingredient, int64, error) {
	base := r.builder.Select().From(ingredientTable)
	if !filter.IncludeDeleted {
		base = base.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Category != "" {
		base = base.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		base = base.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)

	var total int64
	if err := pgxscan.Get(ctx, querier, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count ingredients: %w", err)
	}

	listSQL, listArgs, err := base.Columns(ingredientColumns...).
		OrderBy("name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []*ingredient.Ingredient
	if err := pgxscan.Select(ctx, querier, &items, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list ingredients: %w", err)
	}

	return items, total, nil
}

func (r *IngredientRepo) AdjustOnHand(ctx context.Context, ingID id.ID, delta types.Quantity) error {
	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, `
		UPDATE cat_ingredients
		SET on_hand = on_hand + $2, updated_at = now()
		WHERE id = $1
	`, ingID, delta)
	if err != nil {
		return fmt.Errorf("adjust on-hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ingID.String())
	}

	return nil
}

// DeductOnHand decrements stock in one server-side statement, clamped
// at zero. Concurrent deductions serialize on the row lock instead of
// racing through a read-modify-write cycle.
func (r *IngredientRepo) DeductOnHand(ctx context.Context, ingID id.ID, amount types.Quantity) error {
	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, `
		UPDATE cat_ingredients
		SET on_hand = GREATEST(on_hand - $2, 0), updated_at = now()
		WHERE id = $1
	`, ingID, amount)
	if err != nil {
		return fmt.Errorf("deduct on-hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ingID.String())
	}

	return nil
}
