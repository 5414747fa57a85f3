package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	backofficehttp "github.com/dejobratic/storefront/internal/backoffice/http"
	discountmemory "github.com/dejobratic/storefront/internal/discounts/adapters/memory"
	invmemory "github.com/dejobratic/storefront/internal/inventory/memory"
	"github.com/dejobratic/storefront/internal/settings"
)

func newMux(t *testing.T) (*http.ServeMux, *discountmemory.Repository, *invmemory.Ledger) {
	t.Helper()
	discounts := discountmemory.NewRepository()
	ledger := invmemory.NewLedger()
	cache := settings.NewCache(settings.NewStaticSource(nil), time.Minute)

	mux := http.NewServeMux()
	backofficehttp.NewHandler(discounts, ledger, cache).Register(mux)
	return mux, discounts, ledger
}

func do(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateDiscountEndpoint(t *testing.T) {
	t.Run("creates discount and uppercases the code", func(t *testing.T) {
		mux, discounts, _ := newMux(t)

		rec := do(t, mux, http.MethodPost, "/v1/discounts", map[string]any{
			"code": "spring10", "type": "percentage", "value": 10,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		stored, err := discounts.GetByCode(context.Background(), "SPRING10")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if stored.Value != 10 || !stored.IsActive {
			t.Errorf("unexpected stored discount %+v", stored)
		}
	})

	t.Run("rejects invalid definitions", func(t *testing.T) {
		mux, _, _ := newMux(t)

		rec := do(t, mux, http.MethodPost, "/v1/discounts", map[string]any{
			"code": "BAD", "type": "percentage", "value": 150,
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		mux, _, _ := newMux(t)

		payload := map[string]any{"code": "TWICE", "type": "fixed_amount", "value": 500}
		if rec := do(t, mux, http.MethodPost, "/v1/discounts", payload); rec.Code != http.StatusCreated {
			t.Fatalf("first create: %d", rec.Code)
		}
		if rec := do(t, mux, http.MethodPost, "/v1/discounts", payload); rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestStockEndpoints(t *testing.T) {
	t.Run("upsert then read back", func(t *testing.T) {
		mux, _, _ := newMux(t)

		rec := do(t, mux, http.MethodPut, "/v1/stock/p1/blue-m", map[string]any{
			"name": "Shirt", "unit_price_cents": 1999, "quantity": 12,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = do(t, mux, http.MethodGet, "/v1/stock/p1/blue-m", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Name != "Shirt" || got.Quantity != 12 {
			t.Errorf("unexpected stock %+v", got)
		}
	})

	t.Run("unknown unit is 404", func(t *testing.T) {
		mux, _, _ := newMux(t)
		if rec := do(t, mux, http.MethodGet, "/v1/stock/ghost", nil); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		mux, _, _ := newMux(t)
		rec := do(t, mux, http.MethodPut, "/v1/stock/p1", map[string]any{
			"name": "Shirt", "unit_price_cents": 1999, "quantity": -1,
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

func TestSettingsEndpoints(t *testing.T) {
	t.Run("write then read back", func(t *testing.T) {
		mux, _, _ := newMux(t)

		rec := do(t, mux, http.MethodPut, "/v1/settings/orders.page_size_default", map[string]any{"value": "50"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = do(t, mux, http.MethodGet, "/v1/settings/orders.page_size_default", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Value != "50" {
			t.Errorf("expected value 50, got %q", got.Value)
		}
	})

	t.Run("unknown setting is 404", func(t *testing.T) {
		mux, _, _ := newMux(t)
		if rec := do(t, mux, http.MethodGet, "/v1/settings/ghost", nil); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
