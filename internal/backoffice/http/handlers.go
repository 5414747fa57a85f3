// Package http exposes the staff-facing endpoints for maintaining discounts
// and stock levels. These sit behind the same server as the storefront API
// but are expected to be fronted by an authenticating proxy.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dejobratic/storefront/internal/discounts/domain"
	discountports "github.com/dejobratic/storefront/internal/discounts/ports"
	"github.com/dejobratic/storefront/internal/inventory"
	"github.com/dejobratic/storefront/internal/settings"
)

// StockWriter replaces the catalog snapshot and available quantity for a
// sellable unit.
type StockWriter interface {
	UpsertUnit(ctx context.Context, unit inventory.Unit, name string, unitPriceCents int64, quantity int) error
	ResolveUnit(ctx context.Context, unit inventory.Unit) (*inventory.UnitInfo, error)
}

type Handler struct {
	discounts discountports.DiscountRepository
	stock     StockWriter
	settings  *settings.Cache
	now       func() time.Time
}

func NewHandler(discounts discountports.DiscountRepository, stock StockWriter, settings *settings.Cache) *Handler {
	return &Handler{discounts: discounts, stock: stock, settings: settings, now: time.Now}
}

// Register binds the backoffice handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/discounts", h.handleDiscounts)
	mux.HandleFunc("/v1/stock/", h.handleStock)
	mux.HandleFunc("/v1/settings/", h.handleSettings)
}

func (h *Handler) handleDiscounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.createDiscount(w, r)
}

type createDiscountRequest struct {
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinAmountCents *int64     `json:"min_amount_cents,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var payload createDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}

	discount := domain.Discount{
		ID:             uuid.NewString(),
		Code:           strings.ToUpper(strings.TrimSpace(payload.Code)),
		Type:           domain.DiscountType(payload.Type),
		Value:          payload.Value,
		MinAmountCents: payload.MinAmountCents,
		MaxUses:        payload.MaxUses,
		IsActive:       active,
		StartsAt:       payload.StartsAt,
		ExpiresAt:      payload.ExpiresAt,
		CreatedAt:      h.now().UTC(),
	}

	if err := discount.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.discounts.Create(r.Context(), discount); err != nil {
		if errors.Is(err, discountports.ErrDuplicateCode) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"discount": discount})
}

type upsertStockRequest struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// handleStock serves PUT /v1/stock/{productID} and
// PUT /v1/stock/{productID}/{variantID}.
func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/stock/")
	productID, variantID, _ := strings.Cut(rest, "/")
	if productID == "" {
		writeError(w, http.StatusNotFound, "product id required")
		return
	}
	unit := inventory.Unit{ProductID: productID, VariantID: variantID}

	switch r.Method {
	case http.MethodPut:
		h.upsertStock(w, r, unit)
	case http.MethodGet:
		h.getStock(w, r, unit)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) upsertStock(w http.ResponseWriter, r *http.Request, unit inventory.Unit) {
	var payload upsertStockRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	if payload.UnitPriceCents < 0 || payload.Quantity < 0 {
		writeError(w, http.StatusUnprocessableEntity, "price and quantity must not be negative")
		return
	}

	if err := h.stock.UpsertUnit(r.Context(), unit, payload.Name, payload.UnitPriceCents, payload.Quantity); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": unit.ProductID,
		"variant_id": unit.VariantID,
		"name":       payload.Name,
		"quantity":   payload.Quantity,
	})
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request, unit inventory.Unit) {
	info, err := h.stock.ResolveUnit(r.Context(), unit)
	if err != nil {
		if errors.Is(err, inventory.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": unit.ProductID,
		"variant_id": unit.VariantID,
		"name":       info.Name,
		"unit_price": info.UnitPriceCents,
		"quantity":   info.QuantityAvailable,
	})
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// handleSettings serves GET and PUT /v1/settings/{key}. Writes go through
// the cache so the new value is visible immediately on this instance.
func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/v1/settings/")
	if key == "" {
		writeError(w, http.StatusNotFound, "setting key required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, err := h.settings.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, settings.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
	case http.MethodPut:
		var payload setSettingRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if err := h.settings.Set(r.Context(), key, payload.Value); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": payload.Value})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
