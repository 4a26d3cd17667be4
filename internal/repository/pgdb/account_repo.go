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

const accountColumns = `
	id, account_type, account_name, supplier_id, market_type, username, password,
	api_credentials, token_info, status, is_active, last_used_at, usage_count,
	total_requests, successful_requests, failed_requests, default_margin_rate,
	sync_enabled, last_sync_at, created_at, updated_at`

// AccountRepo хранит учётные записи поставщиков и маркетплейсов.
type AccountRepo struct {
	pool *pgxpool.Pool
	conv converter.AccountConverter
}

func NewAccountRepo(pool *pgxpool.Pool, conv converter.AccountConverter) *AccountRepo {
	return &AccountRepo{
		pool: pool,
		conv: conv,
	}
}

// Save создаёт или полностью перезаписывает учётную запись.
func (a *AccountRepo) Save(ctx context.Context, account *domain.Account) error {
	m, err := a.conv.ToModel(account)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id)
		DO UPDATE SET
			account_type = EXCLUDED.account_type,
			account_name = EXCLUDED.account_name,
			supplier_id = EXCLUDED.supplier_id,
			market_type = EXCLUDED.market_type,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			api_credentials = EXCLUDED.api_credentials,
			token_info = EXCLUDED.token_info,
			status = EXCLUDED.status,
			is_active = EXCLUDED.is_active,
			last_used_at = EXCLUDED.last_used_at,
			usage_count = EXCLUDED.usage_count,
			total_requests = EXCLUDED.total_requests,
			successful_requests = EXCLUDED.successful_requests,
			failed_requests = EXCLUDED.failed_requests,
			default_margin_rate = EXCLUDED.default_margin_rate,
			sync_enabled = EXCLUDED.sync_enabled,
			last_sync_at = EXCLUDED.last_sync_at,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = tr.Conn(ctx, a.pool).Exec(ctx, query,
		m.ID, m.AccountType, m.AccountName, m.SupplierID, m.MarketType, m.Username, m.Password,
		m.ApiCredentials, m.TokenInfo, m.Status, m.IsActive, m.LastUsedAt, m.UsageCount,
		m.TotalRequests, m.SuccessfulRequests, m.FailedRequests, m.DefaultMarginRate,
		m.SyncEnabled, m.LastSyncAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (a *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return a.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (a *AccountRepo) GetSupplierAccount(ctx context.Context, supplierID, accountID string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND supplier_id = $2 AND account_type = $3
	`

	return a.getOne(ctx, query, accountID, supplierID, string(domain.AccountTypeSupplier))
}

func (a *AccountRepo) GetMarketAccount(ctx context.Context, marketType, accountName string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE market_type = $1 AND account_name = $2 AND account_type = $3
	`

	return a.getOne(ctx, query, marketType, accountName, string(domain.AccountTypeMarket))
}

func (a *AccountRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	account, err := a.scan(tr.Conn(ctx, a.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAccountNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return account, nil
}

func (a *AccountRepo) scan(row pgx.Row) (*domain.Account, error) {
	var m converter.AccountModel
	if err := row.Scan(
		&m.ID, &m.AccountType, &m.AccountName, &m.SupplierID, &m.MarketType, &m.Username, &m.Password,
		&m.ApiCredentials, &m.TokenInfo, &m.Status, &m.IsActive, &m.LastUsedAt, &m.UsageCount,
		&m.TotalRequests, &m.SuccessfulRequests, &m.FailedRequests, &m.DefaultMarginRate,
		&m.SyncEnabled, &m.LastSyncAt, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return a.conv.ToEntity(&m)
}
