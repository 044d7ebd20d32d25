package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bartab/internal/domain/product"
	"github.com/xenking/bartab/internal/domain/tab"
)

func testMenu() []product.Product {
	return []product.Product{
		{ID: "1", Name: "Caipirinha Clássica", Price: decimal.NewFromFloat(25.00), Category: product.CategoryCocktail, Description: "Cachaça, limão e açúcar"},
		{ID: "4", Name: "Água sem Gás", Price: decimal.NewFromFloat(6.00), Category: product.CategoryDrink, Description: "350ml"},
	}
}

func testTabs() []tab.Tab {
	return []tab.Tab{
		{
			ID: "t1", Status: tab.StatusOpen,
			Items: []tab.OrderItem{{ProductID: "1", Price: decimal.NewFromFloat(25.00), Quantity: 2}},
		},
		{
			ID: "t2", Status: tab.StatusClosed, ClosedAt: 1,
			Items: []tab.OrderItem{{ProductID: "4", Price: decimal.NewFromFloat(6.00), Quantity: 1}},
		},
	}
}

func candidateBody(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]}}]}`
}

func TestAsk_NoAPIKey(t *testing.T) {
	a := New(Config{})

	got := a.Ask(context.Background(), "qual drink sugere?", testMenu(), testTabs())
	assert.Equal(t, ReplyNoAPIKey, got)
}

func TestAsk_ForwardsQueryAndContext(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, candidateBody("Sugiro uma Caipirinha."))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "qual drink sugere?", testMenu(), testTabs())
	assert.Equal(t, "Sugiro uma Caipirinha.", got)

	raw, err := json.Marshal(captured["system_instruction"])
	require.NoError(t, err)
	prompt := string(raw)
	assert.Contains(t, prompt, "BarGPT")
	assert.Contains(t, prompt, "Mesas Abertas: 1")
	// Revenue sums every given tab: 2×25.00 + 1×6.00.
	assert.Contains(t, prompt, "R$ 56.00")
	assert.Contains(t, prompt, "Caipirinha Clássica (R$ 25.00)")

	contents, err := json.Marshal(captured["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(contents), "qual drink sugere?")
}

func TestAsk_ServerErrorReturnsFixedString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":500}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "oi", testMenu(), nil)
	assert.Equal(t, ReplyUnavailable, got)
}

func TestAsk_UnreachableHostReturnsFixedString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately: connection refused

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "oi", testMenu(), nil)
	assert.Equal(t, ReplyUnavailable, got)
}

func TestAsk_MalformedResponseReturnsFixedString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{broken")
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "oi", testMenu(), nil)
	assert.Equal(t, ReplyUnavailable, got)
}

func TestAsk_EmptyCandidatesReturnsApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "oi", testMenu(), nil)
	assert.Equal(t, ReplyEmpty, got)
}

func TestAsk_ConcatenatesFirstCandidateParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[
			{"content":{"parts":[{"text":"Olá! "},{"text":"Tudo bem?"}]}},
			{"content":{"parts":[{"text":"segunda resposta ignorada"}]}}
		]}`)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.Ask(context.Background(), "oi", testMenu(), nil)
	assert.Equal(t, "Olá! Tudo bem?", got)
}
