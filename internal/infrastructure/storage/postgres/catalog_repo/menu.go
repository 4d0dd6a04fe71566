package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/catalog/menu"
	"kitchenledger/internal/infrastructure/storage/postgres"
)

const menuTable = "cat_menu_items"

var menuColumns = []string{
	"id", "code", "name", "description", "category", "price", "image_url",
	"recipe", "deletion_mark", "version", "created_at", "updated_at",
}

// MenuRepo implements menu.Repository. The recipe is stored as a JSONB
// document; menu.Recipe handles its own encoding and tolerates
// malformed stored payloads by reading them as empty.
type MenuRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewMenuRepo creates a new menu item repository.
func NewMenuRepo(txm *postgres.TxManager) *MenuRepo {
	return &MenuRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MenuRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	q := r.builder.Insert(menuTable).
		Columns(menuColumns...).
		Values(
			item.ID, item.Code, item.Name, item.Description, item.Category,
			item.Price, item.ImageURL, item.Recipe, item.DeletionMark,
			item.Version, item.CreatedAt, item.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}

	return nil
}

func (r *MenuRepo) Update(ctx context.Context, item *menu.MenuItem) error {
	q := r.builder.Update(menuTable).
		Set("code", item.Code).
		Set("name", item.Name).
		Set("description", item.Description).
		Set("category", item.Category).
		Set("price", item.Price).
		Set("image_url", item.ImageURL).
		Set("recipe", item.Recipe).
		Set("deletion_mark", item.DeletionMark).
		Set("version", item.Version).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("menu item", item.ID.String())
	}

	return nil
}

func (r *MenuRepo) Delete(ctx context.Context, itemID id.ID) error {
	q := r.builder.Update(menuTable).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("menu item", itemID.String())
	}

	return nil
}

func (r *MenuRepo) GetByID(ctx context.Context, itemID id.ID) (*menu.MenuItem, error) {
	q := r.builder.Select(menuColumns...).
		From(menuTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item menu.MenuItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("menu item", itemID.String())
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	return &item, nil
}

func (r *MenuRepo) FindByName(ctx context.Context, name string) (*menu.MenuItem, error) {
	q := r.builder.Select(menuColumns...).
		From(menuTable).
		Where(squirrel.Eq{"name": name, "deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item menu.MenuItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("menu item", name)
		}
		return nil, fmt.Errorf("find menu item by name: %w", err)
	}

	return &item, nil
}

func (r *MenuRepo) List(ctx context.Context, filter menu.ListFilter) ([]*menu.MenuItem, int64, error) {
	base := r.builder.Select().From(menuTable)
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
		return nil, 0, fmt.Errorf("count menu items: %w", err)
	}

	listSQL, listArgs, err := base.Columns(menuColumns...).
		OrderBy("name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []*menu.MenuItem
	if err := pgxscan.Select(ctx, querier, &items, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list menu items: %w", err)
	}

	return items, total, nil
}
