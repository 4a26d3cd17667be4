package domain

import "time"

// AccountType — сторона интеграции, к которой относится учётная запись.
type AccountType string

const (
	AccountTypeSupplier AccountType = "supplier"
	AccountTypeMarket   AccountType = "market"
)

// AccountStatus — состояние учётной записи.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusExpired   AccountStatus = "expired"
)

const (
	// DefaultExpiryBuffer — запас времени, за который токен уже считается просроченным.
	DefaultExpiryBuffer = 5 * time.Minute
	// DefaultMinSuccessRate — минимальная доля успешных запросов для «здоровой» учётной записи.
	DefaultMinSuccessRate = 0.8
)

// TokenInfo описывает токен доступа к внешнему API.
type TokenInfo struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
	TokenType    string
}

func NewTokenInfo(accessToken string, expiresAt *time.Time) *TokenInfo {
	return &TokenInfo{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}
}

// IsExpired сообщает, истекает ли токен в пределах buffer от now.
// Токен без срока действия никогда не считается просроченным.
func (t *TokenInfo) IsExpired(now time.Time, buffer time.Duration) bool {
	if t.ExpiresAt == nil {
		return false
	}

	return !now.Add(buffer).Before(*t.ExpiresAt)
}

// NeedsRefresh истинно, когда now + buffer >= ExpiresAt.
func (t *TokenInfo) NeedsRefresh(now time.Time, buffer time.Duration) bool {
	return t.IsExpired(now, buffer)
}

// ApiCredentials — статические ключи доступа к API.
type ApiCredentials struct {
	ApiKey    string
	ApiSecret string
	VendorID  string
	AccessKey string
	SecretKey string
}

// Account — учётная запись поставщика или маркетплейса.
type Account struct {
	ID                 string
	AccountType        AccountType
	AccountName        string
	SupplierID         string // для AccountTypeSupplier
	MarketType         string // для AccountTypeMarket
	Username           string
	Password           string
	ApiCredentials     *ApiCredentials
	TokenInfo          *TokenInfo
	Status             AccountStatus
	IsActive           bool
	LastUsedAt         *time.Time
	UsageCount         int64
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	DefaultMarginRate  float64
	SyncEnabled        bool
	LastSyncAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewAccount(id string, accountType AccountType, name string, now time.Time) *Account {
	return &Account{
		ID:                id,
		AccountType:       accountType,
		AccountName:       name,
		Status:            AccountStatusActive,
		IsActive:          true,
		DefaultMarginRate: DefaultMarginRate,
		SyncEnabled:       true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateUsageStats учитывает результат одного обращения к внешнему API.
// Инвариант: SuccessfulRequests + FailedRequests == TotalRequests.
func (a *Account) UpdateUsageStats(success bool, now time.Time) {
	a.UsageCount++
	a.TotalRequests++
	a.LastUsedAt = &now

	if success {
		a.SuccessfulRequests++
	} else {
		a.FailedRequests++
	}
}

// SuccessRate возвращает долю успешных запросов, 0 при отсутствии запросов.
func (a *Account) SuccessRate() float64 {
	if a.TotalRequests == 0 {
		return 0
	}

	return float64(a.SuccessfulRequests) / float64(a.TotalRequests)
}

// IsHealthy — активна, статус active, доля успехов не ниже minSuccessRate и токен не просрочен.
// Учётная запись без истории запросов порог по доле успехов проходит.
func (a *Account) IsHealthy(now time.Time, minSuccessRate float64) bool {
	if !a.IsActive || a.Status != AccountStatusActive {
		return false
	}

	if a.TotalRequests > 0 && a.SuccessRate() < minSuccessRate {
		return false
	}

	return a.TokenInfo == nil || !a.TokenInfo.IsExpired(now, DefaultExpiryBuffer)
}

func (a *Account) UpdateToken(token *TokenInfo, now time.Time) {
	a.TokenInfo = token
	a.UpdatedAt = now
}

func (a *Account) UpdateCredentials(creds *ApiCredentials, now time.Time) {
	a.ApiCredentials = creds
	a.UpdatedAt = now
}

func (a *Account) MarkInactive(now time.Time) {
	a.IsActive = false
	a.Status = AccountStatusInactive
	a.UpdatedAt = now
}

func (a *Account) Activate(now time.Time) {
	a.IsActive = true
	a.Status = AccountStatusActive
	a.UpdatedAt = now
}

func (a *Account) Suspend(now time.Time) {
	a.Status = AccountStatusSuspended
	a.UpdatedAt = now
}

func (a *Account) MarkExpired(now time.Time) {
	a.Status = AccountStatusExpired
	a.UpdatedAt = now
}

// CacheKey — ключ учётной записи в кэше токенов.
func (a *Account) CacheKey() string {
	return string(a.AccountType) + ":" + a.ID
}
