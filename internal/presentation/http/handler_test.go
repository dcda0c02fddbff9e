package httppresentation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	appInventory "github.com/Zhima-Mochi/stockroom/internal/application/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/jsonfile"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *appInventory.Service) {
	t.Helper()
	svc := appInventory.NewService(memory.NewSnapshotStore(), nil, nil, nil)
	return NewHandler(svc, "inventory.json", 5, nil, nil), svc
}

func doRequest(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandler_AddAndQuantity(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"10"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mutateItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Quantity)

	rec = doRequest(t, h, http.MethodGet, "/items/quantity?item=apple", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var q quantityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, 10, q.Quantity)
}

func TestHandler_AddInvalidQuantity(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be an integer")
}

func TestHandler_RemoveAbsentItemIsOK(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/items/remove", `{"item":"ghost","quantity":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mutateItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Quantity)
}

func TestHandler_LowStock(t *testing.T) {
	h, _ := newTestHandler(t)

	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"2"}`)
	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"melon","quantity":"50"}`)

	rec := doRequest(t, h, http.MethodGet, "/items/low", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp lowStockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Threshold)
	assert.Equal(t, []string{"apple"}, resp.Items)

	rec = doRequest(t, h, http.MethodGet, "/items/low?threshold=100", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"apple", "melon"}, resp.Items)
}

func TestHandler_LowStockBadThreshold(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/items/low?threshold=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SnapshotSaveAndLoad(t *testing.T) {
	h, _ := newTestHandler(t)

	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"7"}`)

	rec := doRequest(t, h, http.MethodPost, "/snapshot/save", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"100"}`)

	rec = doRequest(t, h, http.MethodPost, "/snapshot/load", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/items/quantity?item=apple", "")
	var q quantityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, 7, q.Quantity)
}

func TestHandler_LoadBadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pear":"abc"}`), 0o644))

	svc := appInventory.NewService(jsonfile.NewStore(), nil, nil, nil)
	h := NewHandler(svc, path, 5, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/snapshot/load", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_Report(t *testing.T) {
	h, _ := newTestHandler(t)

	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"banana","quantity":"3"}`)
	doRequest(t, h, http.MethodPost, "/items/add", `{"item":"apple","quantity":"7"}`)

	rec := doRequest(t, h, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Items Report\napple -> 7\nbanana -> 3\n", rec.Body.String())
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/items/add", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandler_RequestIDEcho(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))
}
