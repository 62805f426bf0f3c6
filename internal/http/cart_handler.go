package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/events"
	"github.com/Os-De/hs-rp.com/internal/middleware"
	"github.com/Os-De/hs-rp.com/internal/storefront"
)

const requestTimeout = 3 * time.Second

// Cart is the UI-event surface of *storefront.Storefront.
type Cart interface {
	CartID() string
	View() storefront.View
	AddItem(ctx context.Context, it cart.Item) (storefront.View, error)
	RemoveItem(ctx context.Context, id string) (storefront.View, error)
	Clear(ctx context.Context) (storefront.View, error)
	BeginCheckout(ctx context.Context) (storefront.CheckoutSummary, error)
	ConfirmCheckout(ctx context.Context, meta events.PublishMetadata) (storefront.CheckoutSummary, error)
}

type CartHandler struct {
	cart   Cart
	logger *log.Logger
}

func NewCartHandler(c Cart, logger *log.Logger) *CartHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CartHandler{cart: c, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCartResponse(h.cart.CartID(), h.cart.View()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.UnitPrice == nil {
		writeError(w, http.StatusBadRequest, "unitPrice is required")
		return
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
		if err := cart.ValidateQuantity(qty); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := h.cart.AddItem(ctx, cart.Item{
		ID:        body.ID,
		Name:      body.Name,
		Amount:    body.Amount,
		UnitPrice: *body.UnitPrice,
		Quantity:  qty,
	})
	if err != nil {
		h.writeMutationError(w, "add item", err)
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(h.cart.CartID(), v))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	// chi matches on RawPath when the request carries escapes such as %2F.
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(productID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid productId")
			return
		}
		productID = decoded
	}
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := h.cart.RemoveItem(ctx, productID)
	if err != nil {
		h.writeMutationError(w, "remove item", err)
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(h.cart.CartID(), v))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := h.cart.Clear(ctx)
	if err != nil {
		h.writeMutationError(w, "clear cart", err)
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(h.cart.CartID(), v))
}

func (h *CartHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.cart.BeginCheckout(ctx)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponse("", summary))
}

func (h *CartHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	meta := events.PublishMetadata{
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		CausationID:   middleware.GetCausationID(r.Context()),
	}

	summary, err := h.cart.ConfirmCheckout(ctx, meta)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponse("checkout completed", summary))
}

func (h *CartHandler) writeMutationError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, cart.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "failed to save cart")
}

func (h *CartHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var checkoutErr *storefront.CheckoutError
	switch {
	case errors.Is(err, storefront.ErrEmptyCart):
		writeError(w, http.StatusConflict, "cart is empty")
	case errors.As(err, &checkoutErr) && checkoutErr.Step != "persist":
		writeError(w, http.StatusBadGateway, "checkout "+checkoutErr.Step+" failed")
	default:
		h.logger.Printf("checkout: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to complete checkout")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
