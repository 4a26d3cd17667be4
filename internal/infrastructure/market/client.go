package market

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	vendorsPath   = "/v2/providers/seller_api/apis/api/v1/marketplace/meta/vendors"
	productsPath  = "/v2/providers/seller_api/apis/api/v1/marketplace/seller-products"
	pricesPath    = "/v2/providers/seller_api/apis/api/v1/marketplace/seller-products/prices"
	inventoryPath = "/v2/providers/seller_api/apis/api/v1/inventories"

	headerSignature = "X-Coupang-Signature"
	headerAccessKey = "X-Coupang-Access-Key"
	headerTimestamp = "X-Coupang-Timestamp"
)

// Config — параметры подключения к API маркетплейса.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // запросов в секунду
	Burst     int
}

// Client — коннектор к REST API маркетплейса с HMAC-подписью запросов.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	clock   usecase.Clock
	logger  logger.Logger
}

func NewClient(cfg Config, clock usecase.Clock, logger logger.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(limit, burst),
		clock:   clock,
		logger:  logger,
	}
}

// Authenticate проверяет ключи подписанным запросом к справочнику продавцов.
func (c *Client) Authenticate(ctx context.Context, creds *domain.ApiCredentials) (bool, error) {
	const op = "Client.Authenticate"

	status, _, err := c.do(ctx, creds, http.MethodGet, vendorsPath, nil)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return status == http.StatusOK, nil
}

func (c *Client) UploadProduct(ctx context.Context, creds *domain.ApiCredentials, product *usecase.MarketProduct) (*usecase.UploadResult, error) {
	const op = "Client.UploadProduct"

	status, body, err := c.do(ctx, creds, http.MethodPost, productsPath, toProductPayload(product))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if status != http.StatusOK {
		return failedResult("업로드 실패", status, body), nil
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &usecase.UploadResult{
		Success:          true,
		ProductID:        resp.ProductID.ptr(),
		ChannelProductNo: resp.ChannelProductNo.ptr(),
	}, nil
}

func (c *Client) UpdateProduct(ctx context.Context, creds *domain.ApiCredentials, productID string, product *usecase.MarketProduct) (*usecase.UploadResult, error) {
	const op = "Client.UpdateProduct"

	status, body, err := c.do(ctx, creds, http.MethodPut, productsPath+"/"+productID, toProductPayload(product))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if status != http.StatusOK {
		return failedResult("수정 실패", status, body), nil
	}

	return &usecase.UploadResult{Success: true, ProductID: &productID}, nil
}

// GetProductStatus переводит статус товара на маркетплейсе в SyncStatus.
func (c *Client) GetProductStatus(ctx context.Context, creds *domain.ApiCredentials, productID string) (domain.SyncStatus, error) {
	const op = "Client.GetProductStatus"

	status, body, err := c.do(ctx, creds, http.MethodGet, productsPath+"/"+productID, nil)
	if err != nil {
		return domain.SyncStatusFailed, e.Wrap(op, err)
	}

	if status != http.StatusOK {
		return domain.SyncStatusFailed, e.Wrap(op, fmt.Errorf("%w: %d", e.ErrUnexpectedStatus, status))
	}

	var resp productStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.SyncStatusFailed, e.Wrap(op, err)
	}

	return toSyncStatus(resp.Status), nil
}

func (c *Client) UpdateInventory(ctx context.Context, creds *domain.ApiCredentials, productID string, quantity int) (bool, error) {
	const op = "Client.UpdateInventory"

	status, _, err := c.do(ctx, creds, http.MethodPut, inventoryPath, inventoryPayload{
		SellerProductID: productID,
		Quantity:        quantity,
	})
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return status == http.StatusOK, nil
}

func (c *Client) UpdatePrice(ctx context.Context, creds *domain.ApiCredentials, productID string, price int64) (bool, error) {
	const op = "Client.UpdatePrice"

	status, _, err := c.do(ctx, creds, http.MethodPut, pricesPath, pricePayload{
		SellerProductID: productID,
		Price:           price,
	})
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return status == http.StatusOK, nil
}

// do отправляет подписанный запрос и возвращает статус и тело ответа.
func (c *Client) do(ctx context.Context, creds *domain.ApiCredentials, method, path string, payload any) (int, []byte, error) {
	if creds == nil {
		return 0, nil, e.ErrMissingFields
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return 0, nil, err
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter error: %w", err)
	}

	accessKey, secretKey := keys(creds)
	timestamp := strconv.FormatInt(c.clock.Now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAccessKey, accessKey)
	req.Header.Set(headerTimestamp, timestamp)
	req.Header.Set(headerSignature, Sign(secretKey, method, path, timestamp, body))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("Market %s %s returned %d", method, path, resp.StatusCode)
	}

	return resp.StatusCode, respBody, nil
}

// Sign вычисляет подпись запроса: hex(HMAC-SHA256(secret, method + path + timestamp + body)).
func Sign(secret, method, path, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write([]byte(timestamp))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

// keys предпочитает отдельную пару access/secret, если она задана.
func keys(creds *domain.ApiCredentials) (string, string) {
	accessKey, secretKey := creds.AccessKey, creds.SecretKey
	if accessKey == "" {
		accessKey = creds.ApiKey
	}
	if secretKey == "" {
		secretKey = creds.ApiSecret
	}

	return accessKey, secretKey
}

func failedResult(prefix string, status int, body []byte) *usecase.UploadResult {
	msg := fmt.Sprintf("%s: %d - %s", prefix, status, strings.TrimSpace(string(body)))
	return &usecase.UploadResult{Success: false, ErrorMessage: &msg}
}

func toSyncStatus(status string) domain.SyncStatus {
	switch strings.ToUpper(status) {
	case "APPROVED", "ACTIVE", "ON_SALE":
		return domain.SyncStatusSuccess
	case "DENIED", "REJECTED", "ERROR":
		return domain.SyncStatusFailed
	case "DELETED", "SUSPENDED":
		return domain.SyncStatusCancelled
	case "":
		return domain.SyncStatusPending
	default:
		return domain.SyncStatusInProgress
	}
}
