package pgdb

import (
	"context"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const (
	historyColumns = `
		id, sync_type, status, item_id, supplier_id, market_type, result, details,
		error_message, started_at, completed_at, duration_seconds, retry_count,
		max_retries, created_at`

	defaultHistoryLimit = 50
)

// SyncHistoryRepo хранит журнал запусков синхронизации.
type SyncHistoryRepo struct {
	pool *pgxpool.Pool
	conv converter.SyncHistoryConverter
}

func NewSyncHistoryRepo(pool *pgxpool.Pool, conv converter.SyncHistoryConverter) *SyncHistoryRepo {
	return &SyncHistoryRepo{
		pool: pool,
		conv: conv,
	}
}

// Save записывает текущее состояние записи журнала. Каждый переход статуса сохраняется отдельно.
func (s *SyncHistoryRepo) Save(ctx context.Context, history *domain.SyncHistory) error {
	m, err := s.conv.ToModel(history)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO sync_history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			item_id = EXCLUDED.item_id,
			supplier_id = EXCLUDED.supplier_id,
			market_type = EXCLUDED.market_type,
			result = EXCLUDED.result,
			details = EXCLUDED.details,
			error_message = EXCLUDED.error_message,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			duration_seconds = EXCLUDED.duration_seconds,
			retry_count = EXCLUDED.retry_count,
			max_retries = EXCLUDED.max_retries;
	`

	_, err = tr.Conn(ctx, s.pool).Exec(ctx, query,
		m.ID, m.SyncType, m.Status, m.ItemID, m.SupplierID, m.MarketType, m.Result, m.Details,
		m.ErrorMessage, m.StartedAt, m.CompletedAt, m.DurationSeconds, m.RetryCount,
		m.MaxRetries, m.CreatedAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SyncHistoryRepo) GetByID(ctx context.Context, id string) (*domain.SyncHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM sync_history WHERE id = $1`

	history, err := s.scan(tr.Conn(ctx, s.pool).QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrHistoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return history, nil
}

// List возвращает последние записи журнала, начиная с самых новых.
func (s *SyncHistoryRepo) List(ctx context.Context, filter usecase.SyncHistoryFilter) ([]*domain.SyncHistory, error) {
	var w whereBuilder
	if filter.ItemID != nil {
		w.add("item_id = $%d", *filter.ItemID)
	}
	if filter.SupplierID != nil {
		w.add("supplier_id = $%d", *filter.SupplierID)
	}
	if filter.SyncType != nil {
		w.add("sync_type = $%d", string(*filter.SyncType))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	args := append(w.args, limit)

	query := `SELECT ` + historyColumns + ` FROM sync_history` + w.String() +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := tr.Conn(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]*domain.SyncHistory, 0)
	for rows.Next() {
		history, err := s.scan(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, history)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (s *SyncHistoryRepo) scan(row pgx.Row) (*domain.SyncHistory, error) {
	var m converter.SyncHistoryModel
	if err := row.Scan(
		&m.ID, &m.SyncType, &m.Status, &m.ItemID, &m.SupplierID, &m.MarketType, &m.Result, &m.Details,
		&m.ErrorMessage, &m.StartedAt, &m.CompletedAt, &m.DurationSeconds, &m.RetryCount,
		&m.MaxRetries, &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	return s.conv.ToEntity(&m)
}
