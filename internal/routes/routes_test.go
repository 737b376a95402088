package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletsvc/wallet_service/internal/config"
	"github.com/walletsvc/wallet_service/internal/logging"
	"github.com/walletsvc/wallet_service/internal/respond"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testClient struct {
	t   *testing.T
	app *fiber.App
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	cfg := config.Config{
		AppName:            "wallet-test",
		AppEnv:             "test",
		IdempotencyTTL:     time.Minute,
		JWTSecret:          "test-secret",
		JWTIssuer:          "wallet-service",
		JWTAudience:        "wallet-clients",
		TokenTTL:           time.Hour,
		LoginRateLimit:     100,
		MaxWalletsPerOwner: 5,
		NotifyChannel:      "wallet-events",
	}
	app := fiber.New(fiber.Config{ErrorHandler: respond.ErrorHandler})
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}))
	return &testClient{t: t, app: app}
}

func (tc *testClient) do(method, path, token string, body any, headers ...string) envelope {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := tc.app.Test(req, -1)
	require.NoError(tc.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(tc.t, json.NewDecoder(resp.Body).Decode(&env))
	require.Equal(tc.t, resp.StatusCode, env.Code, "envelope code mirrors HTTP status")
	return env
}

func (tc *testClient) signIn(phone string) string {
	tc.t.Helper()
	creds := map[string]string{"phoneNumber": phone, "password": "secret1"}
	res := tc.do(http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(tc.t, http.StatusOK, res.Code, res.Message)

	res = tc.do(http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(tc.t, http.StatusOK, res.Code, res.Message)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(tc.t, json.Unmarshal(res.Data, &tok))
	require.NotEmpty(tc.t, tok.Token)
	return tok.Token
}

func walletBody(name, number, owner string) map[string]string {
	return map[string]string{
		"name":          name,
		"type":          "Momo",
		"accountNumber": number,
		"accountScheme": "MTN",
		"owner":         owner,
	}
}

func TestWalletLifecycle(t *testing.T) {
	tc := newTestClient(t)
	const alice, bob = "+233200000001", "+233200000002"
	aliceToken := tc.signIn(alice)
	bobToken := tc.signIn(bob)

	res := tc.do(http.MethodPost, "/api/v1/wallets", aliceToken, walletBody("Main", "0241234567", alice))
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	assert.Equal(t, "Wallet added successfully", res.Message)
	var created struct {
		ID    string `json:"id"`
		Owner string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.Equal(t, alice, created.Owner)

	res = tc.do(http.MethodPost, "/api/v1/wallets", aliceToken, walletBody("Second", "0241234567", alice))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "Wallet with the same account number already exists", res.Message)
	assert.Empty(t, res.Data)

	res = tc.do(http.MethodPost, "/api/v1/wallets", bobToken, walletBody("Stolen", "0550000000", alice))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Unauthorized attempt to create wallet", res.Message)

	res = tc.do(http.MethodGet, "/api/v1/wallets/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Unauthorized attempt to get wallet", res.Message)

	res = tc.do(http.MethodGet, "/api/v1/wallets/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = tc.do(http.MethodGet, "/api/v1/wallets/not-a-uuid", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid wallet id", res.Message)

	res = tc.do(http.MethodGet, "/api/v1/wallets", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var page struct {
		TotalCount int `json:"totalCount"`
		PageNumber int `json:"pageNumber"`
		PageSize   int `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &page))
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 10, page.PageSize)

	res = tc.do(http.MethodGet, "/api/v1/wallets?pageNumber=0", "", nil)
	assert.Equal(t, "Invalid page number", res.Message)

	res = tc.do(http.MethodGet, "/api/v1/wallets/user", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "No wallets found for this user", res.Message)

	res = tc.do(http.MethodDelete, "/api/v1/wallets/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = tc.do(http.MethodDelete, "/api/v1/wallets/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, "true", string(res.Data))

	res = tc.do(http.MethodGet, "/api/v1/wallets/user", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestWalletRoutesRequireToken(t *testing.T) {
	tc := newTestClient(t)

	res := tc.do(http.MethodPost, "/api/v1/wallets", "", walletBody("Main", "0241234567", "+233111"))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = tc.do(http.MethodGet, "/api/v1/wallets/user", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCreateWalletReplaysIdempotencyKey(t *testing.T) {
	tc := newTestClient(t)
	const alice = "+233200000001"
	token := tc.signIn(alice)

	first := tc.do(http.MethodPost, "/api/v1/wallets", token, walletBody("Main", "0241234567", alice), "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Message)

	again := tc.do(http.MethodPost, "/api/v1/wallets", token, walletBody("Main", "0241234567", alice), "Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.JSONEq(t, string(first.Data), string(again.Data))
}

func TestRegisterValidation(t *testing.T) {
	tc := newTestClient(t)

	res := tc.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "phoneNumber is required", res.Message)

	tc.signIn("+233111")
	res = tc.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"phoneNumber": "+233111", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	tc := newTestClient(t)

	resp, err := tc.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status map[string]string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "disabled", health.Status["postgres"])
	assert.Equal(t, "ok", health.Status["redis"])

	tc.do(http.MethodGet, "/api/v1/wallets", "", nil)
	resp, err = tc.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetupRequiresStoresOutsideDevelopment(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	assert.Error(t, err)
}
