package pgdb

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const itemColumns = `
	id, supplier_id, title, brand, original_price, sale_price, margin_rate,
	options, images, category_id, description, manufacturer, model,
	estimated_shipping_days, stock_quantity, max_stock_quantity, is_active,
	normalized_at, last_synced_at, hash_key`

// upsertItemQuery перезаписывает данные поставщика. Время публикации ставит только публикация,
// поэтому повторный сбор без last_synced_at его не стирает.
const upsertItemQuery = `
	INSERT INTO items (` + itemColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (id)
	DO UPDATE SET
		supplier_id = EXCLUDED.supplier_id,
		title = EXCLUDED.title,
		brand = EXCLUDED.brand,
		original_price = EXCLUDED.original_price,
		sale_price = EXCLUDED.sale_price,
		margin_rate = EXCLUDED.margin_rate,
		options = EXCLUDED.options,
		images = EXCLUDED.images,
		category_id = EXCLUDED.category_id,
		description = EXCLUDED.description,
		manufacturer = EXCLUDED.manufacturer,
		model = EXCLUDED.model,
		estimated_shipping_days = EXCLUDED.estimated_shipping_days,
		stock_quantity = EXCLUDED.stock_quantity,
		max_stock_quantity = EXCLUDED.max_stock_quantity,
		is_active = EXCLUDED.is_active,
		normalized_at = EXCLUDED.normalized_at,
		last_synced_at = COALESCE(EXCLUDED.last_synced_at, items.last_synced_at),
		hash_key = EXCLUDED.hash_key,
		updated_at = NOW();
`

// ItemRepo реализует репозиторий товаров поверх PostgreSQL.
type ItemRepo struct {
	pool *pgxpool.Pool
	conv converter.ItemConverter
}

func NewItemRepo(pool *pgxpool.Pool, conv converter.ItemConverter) *ItemRepo {
	return &ItemRepo{
		pool: pool,
		conv: conv,
	}
}

// Save идемпотентно сохраняет товар по ID.
func (i *ItemRepo) Save(ctx context.Context, item *domain.Item) error {
	model, err := i.conv.ToModel(item)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	_, err = tr.Conn(ctx, i.pool).Exec(ctx, upsertItemQuery,
		model.ID, model.SupplierID, model.Title, model.Brand, model.OriginalPrice, model.SalePrice, model.MarginRate,
		model.Options, model.Images, model.CategoryID, model.Description, model.Manufacturer, model.Model,
		model.EstimatedShippingDays, model.StockQuantity, model.MaxStockQuantity, model.IsActive,
		model.NormalizedAt, model.LastSyncedAt, model.HashKey,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (i *ItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := i.scan(tr.Conn(ctx, i.pool).QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return item, nil
}

// GetBySupplier возвращает страницу товаров поставщика в порядке ID.
func (i *ItemRepo) GetBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE supplier_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	rows, err := tr.Conn(ctx, i.pool).Query(ctx, query, supplierID, limit, offset)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]*domain.Item, 0, limit)
	for rows.Next() {
		item, err := i.scan(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return items, nil
}

// FindByHash возвращает самый ранний товар с указанным хэшем.
func (i *ItemRepo) FindByHash(ctx context.Context, hashKey string) (*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE hash_key = $1
		ORDER BY created_at
		LIMIT 1
	`

	item, err := i.scan(tr.Conn(ctx, i.pool).QueryRow(ctx, query, hashKey))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return item, nil
}

// Update меняет только заданные поля товара.
func (i *ItemRepo) Update(ctx context.Context, id string, upd *usecase.ItemUpdate) error {
	var b setBuilder
	if upd.Title != nil {
		b.add("title", *upd.Title)
	}
	if upd.Brand != nil {
		b.add("brand", *upd.Brand)
	}
	if upd.CategoryID != nil {
		b.add("category_id", *upd.CategoryID)
	}
	if upd.MarginRate != nil {
		b.add("margin_rate", *upd.MarginRate)
	}
	if upd.HashKey != nil {
		b.add("hash_key", *upd.HashKey)
	}
	if upd.NormalizedAt != nil {
		b.add("normalized_at", *upd.NormalizedAt)
	}
	if upd.LastSyncedAt != nil {
		b.add("last_synced_at", *upd.LastSyncedAt)
	}
	if upd.IsActive != nil {
		b.add("is_active", *upd.IsActive)
	}

	if b.empty() {
		return nil
	}

	query, args := b.build("items", id)
	tag, err := tr.Conn(ctx, i.pool).Exec(ctx, query, args...)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
	}

	return nil
}

func (i *ItemRepo) scan(row pgx.Row) (*domain.Item, error) {
	var m converter.ItemModel
	if err := row.Scan(
		&m.ID, &m.SupplierID, &m.Title, &m.Brand, &m.OriginalPrice, &m.SalePrice, &m.MarginRate,
		&m.Options, &m.Images, &m.CategoryID, &m.Description, &m.Manufacturer, &m.Model,
		&m.EstimatedShippingDays, &m.StockQuantity, &m.MaxStockQuantity, &m.IsActive,
		&m.NormalizedAt, &m.LastSyncedAt, &m.HashKey,
	); err != nil {
		return nil, err
	}

	return i.conv.ToEntity(&m)
}
