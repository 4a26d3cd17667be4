package market

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type stubClock struct{}

func (stubClock) Now() time.Time { return testNow }
func (stubClock) Today() time.Time { return testNow.Truncate(24 * time.Hour) }
func (stubClock) AddDays(n int) time.Time { return testNow.AddDate(0, 0, n) }
func (stubClock) AddHours(n int) time.Time { return testNow.Add(time.Duration(n) * time.Hour) }
func (stubClock) IsExpired(at time.Time, buffer time.Duration) bool { return !testNow.Add(buffer).Before(at) }
func (stubClock) Sleep(context.Context, time.Duration) error { return nil }

var creds = &domain.ApiCredentials{AccessKey: "ak", SecretKey: "sk", VendorID: "V1"}

// signedHandler проверяет подпись запроса и передаёт управление next.
func signedHandler(t *testing.T, next func(w http.ResponseWriter, r *http.Request, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		ts := r.Header.Get(headerTimestamp)
		assert.Equal(t, strconv.FormatInt(testNow.UnixMilli(), 10), ts)
		assert.Equal(t, "ak", r.Header.Get(headerAccessKey))
		assert.Equal(t, Sign("sk", r.Method, r.URL.Path, ts, body), r.Header.Get(headerSignature))

		next(w, r, body)
	}
}

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: time.Second, RateLimit: 100, Burst: 10}, stubClock{}, logger.Nop())
}

func TestSign_Deterministic(t *testing.T) {
	a := Sign("secret", "POST", "/path", "1700000000000", []byte(`{"a":1}`))
	b := Sign("secret", "POST", "/path", "1700000000000", []byte(`{"a":1}`))
	c := Sign("secret", "POST", "/path", "1700000000001", []byte(`{"a":1}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestClient_UploadProduct(t *testing.T) {
	description := "가벼운 러닝화"
	product := &usecase.MarketProduct{
		ID:          "item-1",
		Title:       "나이키 운동화",
		Price:       13000,
		Stock:       5,
		Images:      []string{"https://img/1.jpg"},
		CategoryID:  "신발",
		Description: &description,
	}

	t.Run("success with numeric ids", func(t *testing.T) {
		client := newClient(t, signedHandler(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, productsPath, r.URL.Path)

			var payload productPayload
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, "나이키 운동화", payload.SellerProductName)
			assert.Equal(t, int64(13000), payload.SalePrice)
			assert.Equal(t, []productImage{{ImageURL: "https://img/1.jpg"}}, payload.Images)
			assert.Equal(t, description, payload.Description)

			_, _ = w.Write([]byte(`{"productId":12345,"channelProductNo":"CH-9"}`))
		}))

		res, err := client.UploadProduct(context.Background(), creds, product)

		require.NoError(t, err)
		assert.True(t, res.Success)
		require.NotNil(t, res.ProductID)
		assert.Equal(t, "12345", *res.ProductID)
		require.NotNil(t, res.ChannelProductNo)
		assert.Equal(t, "CH-9", *res.ChannelProductNo)
	})

	t.Run("rejected upload", func(t *testing.T) {
		client := newClient(t, signedHandler(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid category"))
		}))

		res, err := client.UploadProduct(context.Background(), creds, product)

		require.NoError(t, err)
		assert.False(t, res.Success)
		require.NotNil(t, res.ErrorMessage)
		assert.Equal(t, "업로드 실패: 400 - invalid category", *res.ErrorMessage)
	})
}

func TestClient_SignsWithApiKeyPair(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts := r.Header.Get(headerTimestamp)
		assert.Equal(t, "key", r.Header.Get(headerAccessKey))
		assert.Equal(t, Sign("secret", r.Method, r.URL.Path, ts, nil), r.Header.Get(headerSignature))
		w.WriteHeader(http.StatusOK)
	}))

	ok, err := client.Authenticate(context.Background(), &domain.ApiCredentials{ApiKey: "key", ApiSecret: "secret"})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_GetProductStatus(t *testing.T) {
	cases := map[string]domain.SyncStatus{
		"APPROVED":  domain.SyncStatusSuccess,
		"DENIED":    domain.SyncStatusFailed,
		"DELETED":   domain.SyncStatusCancelled,
		"IN_REVIEW": domain.SyncStatusInProgress,
	}

	for remote, want := range cases {
		t.Run(remote, func(t *testing.T) {
			client := newClient(t, signedHandler(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
				assert.Equal(t, productsPath+"/P1", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": remote})
			}))

			got, err := client.GetProductStatus(context.Background(), creds, "P1")

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestClient_UpdateInventoryAndPrice(t *testing.T) {
	client := newClient(t, signedHandler(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		assert.Equal(t, http.MethodPut, r.Method)

		switch r.URL.Path {
		case inventoryPath:
			var p inventoryPayload
			require.NoError(t, json.Unmarshal(body, &p))
			assert.Equal(t, inventoryPayload{SellerProductID: "P1", Quantity: 7}, p)
			w.WriteHeader(http.StatusOK)
		case pricesPath:
			w.WriteHeader(http.StatusConflict)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	ok, err := client.UpdateInventory(context.Background(), creds, "P1", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.UpdatePrice(context.Background(), creds, "P1", 15000)
	require.NoError(t, err)
	assert.False(t, ok)
}
