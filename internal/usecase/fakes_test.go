package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/mock"
)

// CLOCK

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Today() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

func (c *fakeClock) AddDays(n int) time.Time  { return c.Now().AddDate(0, 0, n) }
func (c *fakeClock) AddHours(n int) time.Time { return c.Now().Add(time.Duration(n) * time.Hour) }

func (c *fakeClock) IsExpired(at time.Time, buffer time.Duration) bool {
	return !c.Now().Add(buffer).Before(at)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// TX

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ITEMS

type memItemRepo struct {
	mu        sync.Mutex
	items     map[string]domain.Item
	saveErr   map[string]error
	updateErr map[string]error
	saves     int
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{
		items:     map[string]domain.Item{},
		saveErr:   map[string]error{},
		updateErr: map[string]error{},
	}
}

func (r *memItemRepo) Save(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveErr[item.ID]; err != nil {
		return err
	}
	r.saves++
	r.items[item.ID] = *item
	return nil
}

func (r *memItemRepo) GetByID(_ context.Context, id string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, e.ErrItemNotFound
	}
	return &item, nil
}

func (r *memItemRepo) GetBySupplier(_ context.Context, supplierID string, limit, offset int) ([]*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.items))
	for id, item := range r.items {
		if item.SupplierID == supplierID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := []*domain.Item{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		item := r.items[ids[i]]
		out = append(out, &item)
	}
	return out, nil
}

func (r *memItemRepo) FindByHash(_ context.Context, hashKey string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.HashKey == hashKey {
			return &item, nil
		}
	}
	return nil, e.ErrItemNotFound
}

func (r *memItemRepo) Update(_ context.Context, id string, upd *ItemUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[id]; err != nil {
		return err
	}
	item, ok := r.items[id]
	if !ok {
		return e.ErrItemNotFound
	}
	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Brand != nil {
		item.Brand = *upd.Brand
	}
	if upd.CategoryID != nil {
		item.CategoryID = *upd.CategoryID
	}
	if upd.MarginRate != nil {
		item.Price.MarginRate = *upd.MarginRate
	}
	if upd.HashKey != nil {
		item.HashKey = *upd.HashKey
	}
	if upd.NormalizedAt != nil {
		item.NormalizedAt = *upd.NormalizedAt
	}
	if upd.LastSyncedAt != nil {
		t := *upd.LastSyncedAt
		item.LastSyncedAt = &t
	}
	if upd.IsActive != nil {
		item.IsActive = *upd.IsActive
	}
	r.items[id] = item
	return nil
}

// ACCOUNTS

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	saves    int
}

func newMemAccountRepo(accounts ...*domain.Account) *memAccountRepo {
	r := &memAccountRepo{accounts: map[string]domain.Account{}}
	for _, a := range accounts {
		r.accounts[a.ID] = *a
	}
	return r
}

func (r *memAccountRepo) Save(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.accounts[account.ID] = *account
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, e.ErrAccountNotFound
	}
	return &a, nil
}

func (r *memAccountRepo) GetSupplierAccount(ctx context.Context, supplierID, accountID string) (*domain.Account, error) {
	a, err := r.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a.AccountType != domain.AccountTypeSupplier || a.SupplierID != supplierID {
		return nil, e.ErrAccountNotFound
	}
	return a, nil
}

func (r *memAccountRepo) GetMarketAccount(_ context.Context, marketType, accountName string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountType == domain.AccountTypeMarket && a.MarketType == marketType && a.AccountName == accountName {
			return &a, nil
		}
	}
	return nil, e.ErrAccountNotFound
}

// HISTORY + OUTBOX

type memHistoryRepo struct {
	mu       sync.Mutex
	records  map[string]domain.SyncHistory
	statuses []domain.SyncStatus
	saves    int
	// номер вызова Save (с 1), который вернёт failErr
	failOn  int
	failErr error
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{records: map[string]domain.SyncHistory{}}
}

func (r *memHistoryRepo) Save(_ context.Context, h *domain.SyncHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saves == r.failOn {
		return r.failErr
	}
	r.records[h.ID] = *h
	r.statuses = append(r.statuses, h.Status)
	return nil
}

func (r *memHistoryRepo) GetByID(_ context.Context, id string) (*domain.SyncHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.records[id]
	if !ok {
		return nil, e.ErrHistoryNotFound
	}
	return &h, nil
}

func (r *memHistoryRepo) List(_ context.Context, filter SyncHistoryFilter) ([]*domain.SyncHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.SyncHistory{}
	for _, h := range r.records {
		if filter.SyncType != nil && h.SyncType != *filter.SyncType {
			continue
		}
		h := h
		out = append(out, &h)
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

type memOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (r *memOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return event, nil
}

func (r *memOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *memOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }
func (r *memOutboxRepo) MarkAsFailed(context.Context, int64) error    { return nil }

// CACHE + SNAPSHOTS

type memCacheRepo struct {
	mu      sync.Mutex
	items   map[string]domain.Item
	deleted []string
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{items: map[string]domain.Item{}}
}

func (c *memCacheRepo) GetItems(_ context.Context, ids []string) (map[string]*domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]*domain.Item{}
	for _, id := range ids {
		if item, ok := c.items[id]; ok {
			out[id] = &item
		}
	}
	return out, nil
}

func (c *memCacheRepo) SetItems(_ context.Context, items []*domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.items[item.ID] = *item
	}
	return nil
}

func (c *memCacheRepo) DeleteItems(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

type fakeSnapshots struct {
	calls int
}

func (f *fakeSnapshots) ArchiveRawItems(_ context.Context, runID string, _ []RawItem) (string, error) {
	f.calls++
	return "raw/" + runID + ".json", nil
}

// PORTS

type supplierMock struct {
	mock.Mock
}

func (m *supplierMock) Authenticate(ctx context.Context, creds *SupplierCredentials) (*domain.TokenInfo, error) {
	args := m.Called(ctx, creds)
	token, _ := args.Get(0).(*domain.TokenInfo)
	return token, args.Error(1)
}

func (m *supplierMock) FetchItems(ctx context.Context, supplierID, accountID string, itemKeys []string) ([]RawItem, error) {
	args := m.Called(ctx, supplierID, accountID, itemKeys)
	items, _ := args.Get(0).([]RawItem)
	return items, args.Error(1)
}

func (m *supplierMock) GetCategories(ctx context.Context, supplierID, accountID string) ([]domain.Category, error) {
	args := m.Called(ctx, supplierID, accountID)
	categories, _ := args.Get(0).([]domain.Category)
	return categories, args.Error(1)
}

func (m *supplierMock) CheckCredentials(ctx context.Context, creds *SupplierCredentials) bool {
	return m.Called(ctx, creds).Bool(0)
}

func (m *supplierMock) CreateOrder(ctx context.Context, supplierID, accountID string, order *SupplierOrderInput) ([]OrderRef, error) {
	args := m.Called(ctx, supplierID, accountID, order)
	refs, _ := args.Get(0).([]OrderRef)
	return refs, args.Error(1)
}

type marketMock struct {
	mock.Mock
}

func (m *marketMock) Authenticate(ctx context.Context, creds *domain.ApiCredentials) (bool, error) {
	args := m.Called(ctx, creds)
	return args.Bool(0), args.Error(1)
}

func (m *marketMock) UploadProduct(ctx context.Context, creds *domain.ApiCredentials, product *MarketProduct) (*UploadResult, error) {
	args := m.Called(ctx, creds, product)
	res, _ := args.Get(0).(*UploadResult)
	return res, args.Error(1)
}

func (m *marketMock) UpdateProduct(ctx context.Context, creds *domain.ApiCredentials, productID string, product *MarketProduct) (*UploadResult, error) {
	args := m.Called(ctx, creds, productID, product)
	res, _ := args.Get(0).(*UploadResult)
	return res, args.Error(1)
}

func (m *marketMock) GetProductStatus(ctx context.Context, creds *domain.ApiCredentials, productID string) (domain.SyncStatus, error) {
	args := m.Called(ctx, creds, productID)
	return args.Get(0).(domain.SyncStatus), args.Error(1)
}

func (m *marketMock) UpdateInventory(ctx context.Context, creds *domain.ApiCredentials, productID string, quantity int) (bool, error) {
	args := m.Called(ctx, creds, productID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *marketMock) UpdatePrice(ctx context.Context, creds *domain.ApiCredentials, productID string, price int64) (bool, error) {
	args := m.Called(ctx, creds, productID, price)
	return args.Bool(0), args.Error(1)
}

// HARNESS

type harness struct {
	clock    *fakeClock
	items    *memItemRepo
	accounts *memAccountRepo
	history  *memHistoryRepo
	outbox   *memOutboxRepo
	cache    *memCacheRepo
	ledger   *Ledger
}

func newHarness(accounts ...*domain.Account) *harness {
	h := &harness{
		clock:    newFakeClock(),
		items:    newMemItemRepo(),
		accounts: newMemAccountRepo(accounts...),
		history:  newMemHistoryRepo(),
		outbox:   &memOutboxRepo{},
		cache:    newMemCacheRepo(),
	}
	h.ledger = NewLedger(h.history, h.outbox, passthroughTx{}, h.clock, logger.Nop())
	return h
}

func (h *harness) record(t interface{ Fatalf(string, ...any) }, id string) domain.SyncHistory {
	rec, ok := h.history.records[id]
	if !ok {
		t.Fatalf("sync history %s not saved", id)
	}
	return rec
}
