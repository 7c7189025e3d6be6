package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/command"
	"github.com/example/dscommerce/internal/events"
	"github.com/example/dscommerce/internal/infrastructure/store"
	"github.com/example/dscommerce/internal/query"
)

const testSecret = "test-secret-key-that-is-long-enough"

const productBody = `{
	"name": "Me 123",
	"description": "Lorem ipsum, dolor sit amet consectetur adipisicing elit. Qui ad, adipisci illum ipsam velit et odit.",
	"imgUrl": "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/1-big.jpg",
	"price": 20.0,
	"categories": [{"id": 2}, {"id": 3}]
}`

type testServer struct {
	*httptest.Server
	clientToken string
	adminToken  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.NewSeededMemoryStore()
	require.NoError(t, err)

	jwtService := auth.NewJWTService(testSecret, time.Hour)
	handlers := NewHandlers(command.NewHandler(st, events.Nop{}, log), query.NewHandler(st, st), log)
	authHandlers := NewAuthHandlers(st, jwtService, "", "", log)

	srv := httptest.NewServer(NewRouter(handlers, authHandlers, jwtService, Options{}, log))
	t.Cleanup(srv.Close)

	ts := &testServer{Server: srv}
	ts.clientToken = ts.token(t, "maria@gmail.com", store.SeedPassword)
	ts.adminToken = ts.token(t, "alex@gmail.com", store.SeedPassword)
	return ts
}

func (ts *testServer) token(t *testing.T, username, password string) string {
	t.Helper()
	resp, err := http.PostForm(ts.URL+"/oauth2/token", url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tok TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	return tok.AccessToken
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

// ============================================
// Token endpoint
// ============================================

func TestToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.PostForm(ts.URL+"/oauth2/token", url.Values{
		"grant_type": {"password"},
		"username":   {"maria@gmail.com"},
		"password":   {"wrong"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.PostForm(ts.URL+"/oauth2/token", url.Values{"grant_type": {"client_credentials"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToken_ClientAuthentication(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewSeededMemoryStore()
	require.NoError(t, err)
	h := NewAuthHandlers(st, auth.NewJWTService(testSecret, time.Hour), "myclientid", "myclientsecret", log)

	form := url.Values{"grant_type": {"password"}, "username": {"alex@gmail.com"}, "password": {store.SeedPassword}}

	req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Token(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("myclientid", "myclientsecret")
	rec = httptest.NewRecorder()
	h.Token(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tok TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)
	assert.InDelta(t, 3600, tok.ExpiresIn, 2)
}

// ============================================
// Products
// ============================================

func TestGetProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/products/2", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Smart TV", body["name"])
	assert.Equal(t, 2190.0, body["price"])
	assert.Len(t, body["categories"], 2)

	resp, body = ts.do(t, http.MethodGet, "/products/100", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Resource not found", body["error"])
	assert.Equal(t, "/products/100", body["path"])
}

func TestGetProducts(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/products", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["content"], 20)
	assert.Equal(t, 25.0, body["totalElements"])

	resp, body = ts.do(t, http.MethodGet, "/products?name=macbook", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content := body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "Macbook Pro", content[0].(map[string]any)["name"])

	resp, body = ts.do(t, http.MethodGet, "/products?name=nothing-matches", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["content"])
}

func TestCreateProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/products", ts.adminToken, productBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Me 123", body["name"])
	assert.Equal(t, 20.0, body["price"])
	assert.Equal(t, "/products/26", resp.Header.Get("Location"))
	assert.ElementsMatch(t, []any{2.0, 3.0}, pluck(body["categories"], "id"))
}

// pluck collects field from every object of a decoded JSON array.
func pluck(list any, field string) []any {
	var out []any
	for _, v := range list.([]any) {
		out = append(out, v.(map[string]any)[field])
	}
	return out
}

func TestCreateProduct_Denied(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/products", ts.clientToken, productBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/products", "", productBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/products", ts.adminToken+"xpto", productBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/products", "", "{not json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	roleless, _, err := auth.NewJWTService(testSecret, time.Hour).GenerateAccessToken(7, "ghost@gmail.com", 0)
	require.NoError(t, err)
	resp, _ = ts.do(t, http.MethodPost, "/products", roleless, productBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateProduct_Invalid(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		field   string
		message string
	}{
		{"short name", func(m map[string]any) { m["name"] = "ab" }, "name", "name length out of range"},
		{"short description", func(m map[string]any) { m["description"] = "abc" }, "description", "description too short"},
		{"negative price", func(m map[string]any) { m["price"] = -50.0 }, "price", "price must be positive"},
		{"zero price", func(m map[string]any) { m["price"] = 0.0 }, "price", "price must be positive"},
		{"no categories", func(m map[string]any) { m["categories"] = []any{} }, "categories", "at least one category required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(productBody), &m))
			tt.mutate(m)
			b, err := json.Marshal(m)
			require.NoError(t, err)

			resp, body := ts.do(t, http.MethodPost, "/products", ts.adminToken, string(b))

			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "Invalid data", body["error"])
			errs := body["errors"].([]any)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].(map[string]any)["fieldName"])
			assert.Equal(t, tt.message, errs[0].(map[string]any)["message"])
		})
	}
}

func TestCreateProduct_MalformedBodyForAdmin(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/products", ts.adminToken, "{not json")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPut, "/products/10", ts.adminToken, productBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Me 123", body["name"])

	resp, _ = ts.do(t, http.MethodPut, "/products/100", ts.adminToken, productBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, "/products/100", ts.clientToken, productBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, "/products/10", "", productBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodDelete, "/products/10", ts.clientToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/products/10", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(t, http.MethodDelete, "/products/3", ts.adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Referential integrity violation", body["error"])

	resp, _ = ts.do(t, http.MethodDelete, "/products/3", ts.adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, http.MethodDelete, "/products/10", ts.adminToken, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, body)

	resp, _ = ts.do(t, http.MethodDelete, "/products/10", ts.adminToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/products/not-a-number", ts.adminToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ============================================
// Orders
// ============================================

func TestGetOrder(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/orders/1", ts.clientToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1431.0, body["total"])
	assert.Equal(t, "PAID", body["status"])
	assert.Equal(t, "Maria Brown", body["client"].(map[string]any)["name"])
	assert.Equal(t, "2022-07-25T13:00:00Z", body["moment"])
	assert.Len(t, body["items"], 2)
	assert.Contains(t, pluck(body["items"], "name"), "The Lord of the Rings")

	resp, _ = ts.do(t, http.MethodGet, "/orders/1", ts.adminToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/orders/2", ts.clientToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/orders/100", ts.clientToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/orders/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/orders/1", ts.clientToken+"xpto", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetOrder_WaitingPaymentHasNoPayment(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/orders/3", ts.clientToken, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "WAITING_PAYMENT", body["status"])
	assert.Nil(t, body["payment"])
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
