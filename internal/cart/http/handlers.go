// Package http exposes the cart consolidation endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dejobratic/storefront/internal/cart"
	"github.com/dejobratic/storefront/internal/inventory"
)

type Handler struct {
	service *cart.Service
}

func NewHandler(service *cart.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the cart handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/carts/", h.handleCart)
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/carts/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "cart id required")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getCart(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.clearCart(w, r, id)
	case sub == "items" && r.Method == http.MethodPost:
		h.addItem(w, r, id)
	case sub == "items" && r.Method == http.MethodPut:
		h.setItemQuantity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, id string) {
	var input cart.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	c, err := h.service.AddItem(r.Context(), id, input)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

type setQuantityRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) setItemQuantity(w http.ResponseWriter, r *http.Request, id string) {
	var input setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	c, err := h.service.SetItemQuantity(r.Context(), id, input.ProductID, input.Size, input.Color, input.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Clear(r.Context(), id); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrUnitNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
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
