package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bartab/internal/domain/product"
	"github.com/xenking/bartab/internal/domain/tab"
	filestore "github.com/xenking/bartab/internal/storage/file"
)

// --- Mock assistant ---

type mockAssistant struct {
	reply     string
	lastQuery string
	lastTabs  []tab.Tab
}

func (m *mockAssistant) Ask(_ context.Context, query string, _ []product.Product, tabs []tab.Tab) string {
	m.lastQuery = query
	m.lastTabs = tabs
	return m.reply
}

// --- Helpers ---

func newTestHandler(t *testing.T) (http.Handler, *mockAssistant) {
	t.Helper()

	snap := filestore.New(filepath.Join(t.TempDir(), "bar_tabs.json"))
	store, err := tab.NewStore(context.Background(), product.NewCatalog(product.InitialMenu()), snap)
	require.NoError(t, err)

	asst := &mockAssistant{reply: "Sugiro uma Caipirinha."}
	return New(store, asst).Router(), asst
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func createTestTab(t *testing.T, h http.Handler, table string) tab.Tab {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/tabs", map[string]string{"tableNumber": table})
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[tab.Tab](t, w)
}

// --- Tests ---

func TestListMenu(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	menu := decode[[]product.Product](t, w)
	require.Len(t, menu, 10)
	assert.Equal(t, "Caipirinha Clássica", menu[0].Name)
}

func TestAddProduct(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/menu", map[string]any{
		"id": "50", "name": "Negroni", "price": 34.00, "category": "Drinks",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	menu := decode[[]product.Product](t, do(t, h, http.MethodGet, "/api/menu", nil))
	assert.Len(t, menu, 11)
}

func TestAddProduct_DuplicateID(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/menu", map[string]any{
		"id": "1", "name": "Negroni", "price": 34.00, "category": "Drinks",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTab(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/tabs", map[string]string{
		"tableNumber": "Mesa 5", "customerName": "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[tab.Tab](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, tab.StatusOpen, created.Status)
	assert.Equal(t, "Ana", created.CustomerName)
}

func TestCreateTab_MissingTableNumber(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/tabs", map[string]string{"customerName": "Ana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTabDetail_TotalAndGroupedItems(t *testing.T) {
	h, _ := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")

	w := do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/items", map[string]any{
		"productId": "1", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/api/tabs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	detail := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, "50", string(detail["total"]))

	var grouped []tab.GroupedLine
	require.NoError(t, json.Unmarshal(detail["groupedItems"], &grouped))
	require.Len(t, grouped, 1)
	assert.Equal(t, 2, grouped[0].TotalQuantity)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	h, _ := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")

	w := do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/items", map[string]any{
		"productId": "4",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	item := decode[tab.OrderItem](t, w)
	assert.Equal(t, 1, item.Quantity)
}

func TestAddItem_Errors(t *testing.T) {
	h, _ := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")

	w := do(t, h, http.MethodPost, "/api/tabs/unknown/items", map[string]any{"productId": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/items", map[string]any{"productId": "99"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/items", map[string]any{"productId": "1", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusRoutes_CloseThenReopen(t *testing.T) {
	h, _ := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")

	w := do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	closed := decode[tab.Tab](t, w)
	assert.Equal(t, tab.StatusClosed, closed.Status)
	assert.NotZero(t, closed.ClosedAt)

	w = do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/reopen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reopened := decode[tab.Tab](t, w)
	assert.Equal(t, tab.StatusOpen, reopened.Status)
	assert.Zero(t, reopened.ClosedAt)
}

func TestListTabs_ActiveAndHistoryViews(t *testing.T) {
	h, _ := newTestHandler(t)
	first := createTestTab(t, h, "Mesa 1")
	createTestTab(t, h, "Mesa 2")

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/tabs/"+first.ID+"/close", nil).Code)

	active := decode[[]tab.Tab](t, do(t, h, http.MethodGet, "/api/tabs", nil))
	require.Len(t, active, 1)
	assert.Equal(t, "Mesa 2", active[0].TableNumber)

	hist := decode[[]tab.Tab](t, do(t, h, http.MethodGet, "/api/tabs?view=history", nil))
	require.Len(t, hist, 1)
	assert.Equal(t, "Mesa 1", hist[0].TableNumber)

	w := do(t, h, http.MethodGet, "/api/tabs?view=everything", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTab_Idempotent(t *testing.T) {
	h, _ := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/tabs/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/tabs/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/tabs/"+created.ID, nil).Code)
}

func TestAssistant_ForwardsActiveTabs(t *testing.T) {
	h, asst := newTestHandler(t)
	created := createTestTab(t, h, "Mesa 5")
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/tabs/"+created.ID+"/items", map[string]any{"productId": "1", "quantity": 2}).Code)

	w := do(t, h, http.MethodPost, "/api/assistant", map[string]string{"message": "qual drink sugere?"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "Sugiro uma Caipirinha.", resp["reply"])
	assert.Equal(t, "qual drink sugere?", asst.lastQuery)
	require.Len(t, asst.lastTabs, 1)
}

func TestAssistant_EmptyMessage(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/assistant", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tabs", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
