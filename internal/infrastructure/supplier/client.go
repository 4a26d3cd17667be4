package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/jitter"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jimlawless/whereami"
)

const (
	authService  = "ownerclan"
	authUserType = "seller"
	jwtPrefix    = "eyJ"
)

// Config — параметры подключения к API поставщика.
type Config struct {
	APIURL     string
	AuthURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client — коннектор к GraphQL API поставщика.
// Токены берутся из TokenStore и обновляются через Authenticate.
type Client struct {
	http     *http.Client
	cfg      Config
	accounts usecase.AccountRepository
	tokens   usecase.TokenStore
	clock    usecase.Clock
	logger   logger.Logger
}

func NewClient(cfg Config, accounts usecase.AccountRepository, tokens usecase.TokenStore, clock usecase.Clock, logger logger.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		accounts: accounts,
		tokens:   tokens,
		clock:    clock,
		logger:   logger,
	}
}

// Authenticate выпускает JWT. Срок действия берётся из claim exp без проверки подписи.
func (c *Client) Authenticate(ctx context.Context, creds *usecase.SupplierCredentials) (*domain.TokenInfo, error) {
	const op = "Client.Authenticate"

	body, err := json.Marshal(authRequest{
		Service:  authService,
		UserType: authUserType,
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("%w: %d %s", e.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	token := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(token, jwtPrefix) {
		return nil, e.Wrap(op, fmt.Errorf("invalid JWT token format"))
	}

	return domain.NewTokenInfo(token, expiresAt(token)), nil
}

// CheckCredentials проверяет, что поставщик принимает учётные данные.
func (c *Client) CheckCredentials(ctx context.Context, creds *usecase.SupplierCredentials) bool {
	if _, err := c.Authenticate(ctx, creds); err != nil {
		c.logger.Warnf("Supplier credentials check failed for %s: %v", creds.AccountID, err)
		return false
	}

	return true
}

func (c *Client) FetchItems(ctx context.Context, supplierID, accountID string, itemKeys []string) ([]usecase.RawItem, error) {
	const op = "Client.FetchItems"

	vars := map[string]any{"accountId": accountID}
	if len(itemKeys) > 0 {
		vars["itemKeys"] = itemKeys
	}

	var data productsData
	if err := c.query(ctx, supplierID, accountID, productsQuery, vars, &data, c.cfg.MaxRetries); err != nil {
		return nil, e.Wrap(op, err)
	}

	fetchedAt := c.clock.Now()
	items := make([]usecase.RawItem, 0, len(data.Products))
	for _, p := range data.Products {
		items = append(items, toRawItem(p, supplierID, fetchedAt))
	}

	c.logger.Infof("Fetched %d items from supplier %s", len(items), supplierID)
	return items, nil
}

func (c *Client) GetCategories(ctx context.Context, supplierID, accountID string) ([]domain.Category, error) {
	const op = "Client.GetCategories"

	var data categoriesData
	if err := c.query(ctx, supplierID, accountID, categoriesQuery, map[string]any{"accountId": accountID}, &data, c.cfg.MaxRetries); err != nil {
		return nil, e.Wrap(op, err)
	}

	now := c.clock.Now()
	categories := make([]domain.Category, 0, len(data.Categories))
	for _, cat := range data.Categories {
		categories = append(categories, toDomainCategory(cat, supplierID, now))
	}

	return categories, nil
}

// CreateOrder регистрирует заказ. Поставщик может вернуть один заказ или список, если разделил его.
func (c *Client) CreateOrder(ctx context.Context, supplierID, accountID string, order *usecase.SupplierOrderInput) ([]usecase.OrderRef, error) {
	const op = "Client.CreateOrder"

	// мутация не повторяется: 5xx может прийти уже после того, как поставщик принял заказ
	var data createOrderData
	if err := c.query(ctx, supplierID, accountID, createOrderMutation, map[string]any{"input": order}, &data, 1); err != nil {
		return nil, e.Wrap(op, err)
	}

	refs, err := decodeOrderRefs(data.CreateOrder)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return refs, nil
}

// query выполняет GraphQL-запрос от имени учётной записи поставщика, делая не больше attempts попыток.
// Транспортные ошибки и ответы 5xx повторяются с экспоненциальной задержкой.
func (c *Client) query(ctx context.Context, supplierID, accountID, query string, vars map[string]any, out any, attempts int) error {
	const (
		op        = "Client.query"
		baseDelay = 500 * time.Millisecond
		maxDelay  = 10 * time.Second
	)

	token, err := c.accessToken(ctx, supplierID, accountID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		err = c.execute(ctx, token, graphQLRequest{Query: query, Variables: vars}, out)
		if err == nil || !isRetryable(err) {
			break
		}

		if attempt == attempts-1 {
			break
		}

		delay := jitter.ExponentialBackoff(baseDelay, maxDelay, attempt, jitter.DefaultJitter)
		c.logger.Warnf("Supplier request failed, retrying in %v (attempt %d): %v", delay, attempt+1, err)
		if sleepErr := c.clock.Sleep(ctx, delay); sleepErr != nil {
			return e.Wrap(op, sleepErr)
		}
	}
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *Client) accessToken(ctx context.Context, supplierID, accountID string) (string, error) {
	account, err := c.accounts.GetSupplierAccount(ctx, supplierID, accountID)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	creds := usecase.NewSupplierCredentials(account)
	token, err := c.tokens.RefreshIfNeeded(ctx, account, func(ctx context.Context) (*domain.TokenInfo, error) {
		return c.Authenticate(ctx, creds)
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return token.AccessToken, nil
}

func (c *Client) execute(ctx context.Context, token string, payload graphQLRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		statusErr := fmt.Errorf("%w: %d %s", e.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode >= http.StatusInternalServerError {
			return &transientError{err: statusErr}
		}
		return statusErr
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return err
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, ge := range gqlResp.Errors {
			messages = append(messages, ge.Message)
		}
		return fmt.Errorf("%w: %s", e.ErrGraphQL, strings.Join(messages, "; "))
	}

	if len(gqlResp.Data) == 0 {
		return fmt.Errorf("%w: empty data", e.ErrGraphQL)
	}

	return json.Unmarshal(gqlResp.Data, out)
}

// transientError помечает ошибки, после которых запрос стоит повторить.
type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }

func (t *transientError) Unwrap() error { return t.err }

func isRetryable(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

func decodeOrderRefs(raw json.RawMessage) ([]usecase.OrderRef, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: createOrder returned nothing", e.ErrGraphQL)
	}

	if trimmed[0] == '[' {
		var refs []usecase.OrderRef
		if err := json.Unmarshal(trimmed, &refs); err != nil {
			return nil, err
		}
		return refs, nil
	}

	var ref usecase.OrderRef
	if err := json.Unmarshal(trimmed, &ref); err != nil {
		return nil, err
	}

	return []usecase.OrderRef{ref}, nil
}

// expiresAt читает claim exp. Токен без exp считается бессрочным.
func expiresAt(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	t := exp.Time
	return &t
}
