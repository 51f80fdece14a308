package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"oticapos/m/internal/database"
	"oticapos/m/internal/migrations"
)

type testEnv struct {
	t      *testing.T
	router http.Handler
	db     *sqlx.DB
	admin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	h := New(db, "test-secret")
	env := &testEnv{t: t, router: h.Router(), db: db}
	env.admin = env.register("admin", "admin@shop.test", "admin")
	return env
}

func (e *testEnv) register(username, email, role string) string {
	w := e.do(http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doAdmin(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, path, e.admin, body)
}

func (e *testEnv) decode(w *httptest.ResponseRecorder, dest any) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (e *testEnv) createCustomer(name string) int64 {
	e.t.Helper()
	w := e.doAdmin(http.MethodPost, "/customers", map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	e.decode(w, &resp)
	return resp.ID
}

func (e *testEnv) createProduct(name string, stock int64, salePrice float64) int64 {
	e.t.Helper()
	w := e.doAdmin(http.MethodPost, "/products", map[string]any{
		"name":           name,
		"category":       "frame",
		"stock_quantity": stock,
		"sale_price":     salePrice,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	e.decode(w, &resp)
	return resp.ID
}

func (e *testEnv) productStock(id int64) int64 {
	e.t.Helper()
	var stock int64
	require.NoError(e.t, e.db.Get(&stock, `SELECT stock_quantity FROM products WHERE id = ?`, id))
	return stock
}

func (e *testEnv) count(table string) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Get(&n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)))
	return n
}
