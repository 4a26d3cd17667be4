package pgdb

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// Upsert сохраняет дерево категорий поставщика одним батчем.
// Запись обновляется только при изменении имени, родителя или уровня.
func (c *CategoryRepo) Upsert(ctx context.Context, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	query := `
		INSERT INTO categories (id, supplier_id, name, parent_id, level, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		ON CONFLICT (supplier_id, id)
		DO UPDATE SET
			name = EXCLUDED.name,
			parent_id = EXCLUDED.parent_id,
			level = EXCLUDED.level,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		WHERE
			categories.name IS DISTINCT FROM EXCLUDED.name OR
			categories.parent_id IS DISTINCT FROM EXCLUDED.parent_id OR
			categories.level IS DISTINCT FROM EXCLUDED.level OR
			categories.is_active IS DISTINCT FROM EXCLUDED.is_active;
	`

	batch := &pgx.Batch{}
	for idx := range categories {
		m := c.conv.ToModel(&categories[idx])
		var createdAt any
		if !m.CreatedAt.IsZero() {
			createdAt = m.CreatedAt
		}
		batch.Queue(query, m.ID, m.SupplierID, m.Name, m.ParentID, m.Level, m.IsActive, createdAt)
	}

	if err := tr.Conn(ctx, c.pool).SendBatch(ctx, batch).Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ListBySupplier возвращает категории поставщика от корня к листьям.
func (c *CategoryRepo) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Category, error) {
	query := `
		SELECT id, supplier_id, name, parent_id, level, is_active, created_at, updated_at
		FROM categories
		WHERE supplier_id = $1
		ORDER BY level, name
	`

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, supplierID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(
			&model.ID, &model.SupplierID, &model.Name, &model.ParentID,
			&model.Level, &model.IsActive, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
