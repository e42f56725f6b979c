package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flatfile-shop/internal/model"
	"flatfile-shop/internal/repository"
	"flatfile-shop/internal/service"
	"flatfile-shop/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, dir string) http.Handler {
	t.Helper()
	store := storage.NewFileStore(dir, nil)
	products := service.NewProductService(repository.NewProductRepository(store), nil)
	carts := service.NewCartService(repository.NewCartRepository(store), nil)
	return NewRouter(NewProductHandler(products), NewCartHandler(carts))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProductRoutes_Scenario(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/products", `{"title":"A","price":10,"code":"A1","stock":3,"status":true,"thumbnails":["a.png"],"color":"red"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"id":1,"title":"A","description":"","code":"A1","price":10,"status":true,"stock":3,"category":"","thumbnails":["a.png"]}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/products", `{"title":"B","price":20}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, decode[model.Product](t, w).ID)

	w = do(t, h, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", decode[model.Product](t, w).Title)

	w = do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Product](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, []int{1, 2}, []int{list[0].ID, list[1].ID})

	w = do(t, h, http.MethodDelete, "/api/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mensaje":"Producto eliminado"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Producto no encontrado"}`, w.Body.String())
}

func TestProductRoutes_Update(t *testing.T) {
	h := newTestRouter(t, t.TempDir())
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/products", `{"title":"A","price":10,"stock":5}`).Code)

	w := do(t, h, http.MethodPut, "/api/products/1", `{"id":99,"price":15,"category":"toys"}`)
	require.Equal(t, http.StatusOK, w.Code)

	p := decode[model.Product](t, w)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "A", p.Title)
	assert.Equal(t, 15.0, p.Price)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, "toys", p.Category)

	w = do(t, h, http.MethodGet, "/api/products/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/api/products/42", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Producto no encontrado"}`, w.Body.String())
}

func TestProductRoutes_DeleteMissing(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodDelete, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductRoutes_InvalidJSON(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodPost, "/api/products", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"JSON inválido"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/products", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProductRoutes_TrailingDataRejected(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	for _, body := range []string{`{"title":"A"} trailing-garbage`, `{"title":"A"}}`, `{"title":"A"}{"title":"B"}`} {
		w := do(t, h, http.MethodPost, "/api/products", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"JSON inválido"}`, w.Body.String(), body)
	}

	w := do(t, h, http.MethodPost, "/api/products", "{\"title\":\"A\"}\n")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/api/products", "")
	assert.Len(t, decode[[]model.Product](t, w), 1)
}

func TestProductRoutes_WrongFieldType(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodPost, "/api/products", `{"title":"A","price":"10"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Tipo de dato inválido: price"}`, w.Body.String())

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/products", `{"title":"A"}`).Code)
	w = do(t, h, http.MethodPut, "/api/products/1", `{"stock":"many"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Tipo de dato inválido: stock"}`, w.Body.String())
}

func TestProductRoutes_LargeBody(t *testing.T) {
	h := newTestRouter(t, t.TempDir())
	desc := strings.Repeat("x", 1<<20)

	w := do(t, h, http.MethodPost, "/api/products", `{"title":"A","description":"`+desc+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, desc, decode[model.Product](t, w).Description)
}

func TestProductRoutes_EmptyBodyCreates(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodPost, "/api/products", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, decode[model.Product](t, w).ID)
}

func TestProductRoutes_CorruptedFileIs500(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte("{not json"), 0o644))
	h := newTestRouter(t, dir)

	w := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor"}`, w.Body.String())
}

func TestCartRoutes_NumericIDsOnDiskAre500(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carts.json"), []byte(`[{"id":1,"products":[]}]`), 0o644))
	h := newTestRouter(t, dir)

	w := do(t, h, http.MethodGet, "/api/carts/1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor"}`, w.Body.String())
}

func TestCartRoutes_Scenario(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodPost, "/api/carts", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"1","products":[]}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/carts/1/product/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"1","products":[{"product":"5","quantity":1}]}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/carts/1/product/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"1","products":[{"product":"5","quantity":2}]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/carts/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"product":"5","quantity":2}]`, w.Body.String())
}

func TestCartRoutes_NotFound(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	w := do(t, h, http.MethodGet, "/api/carts/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Carrito no encontrado"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/carts/1/product/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Carrito no encontrado"}`, w.Body.String())
}

func TestRouter_UnknownRoutes(t *testing.T) {
	h := newTestRouter(t, t.TempDir())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/users", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodDelete, "/api/carts/1", "").Code)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"product", service.ErrProductNotFound, http.StatusNotFound, `{"error":"Producto no encontrado"}`},
		{"cart", service.ErrCartNotFound, http.StatusNotFound, `{"error":"Carrito no encontrado"}`},
		{"other", errors.New("disk"), http.StatusInternalServerError, `{"error":"Error interno del servidor"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(context.Background(), w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
