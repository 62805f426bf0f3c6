package http

import (
	"time"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/render"
	"github.com/Os-De/hs-rp.com/internal/storefront"
)

type addItemRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Amount    string   `json:"amount"`
	UnitPrice *float64 `json:"unitPrice"`
	Quantity  *int     `json:"quantity"`
}

type itemResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Amount           string  `json:"amount"`
	UnitPrice        float64 `json:"unitPrice"`
	Quantity         int     `json:"quantity"`
	LineTotal        float64 `json:"lineTotal"`
	LineTotalDisplay string  `json:"lineTotalDisplay"`
}

type cartResponse struct {
	CartID            string         `json:"cartId"`
	Items             []itemResponse `json:"items"`
	ItemCount         int            `json:"itemCount"`
	GrandTotal        float64        `json:"grandTotal"`
	GrandTotalDisplay string         `json:"grandTotalDisplay"`
	Empty             bool           `json:"empty"`
	CheckoutEnabled   bool           `json:"checkoutEnabled"`
	Message           string         `json:"message,omitempty"`
}

type checkoutResponse struct {
	Status            string         `json:"status,omitempty"`
	CartID            string         `json:"cartId"`
	Items             []itemResponse `json:"items"`
	ItemCount         int            `json:"itemCount"`
	GrandTotal        float64        `json:"grandTotal"`
	GrandTotalDisplay string         `json:"grandTotalDisplay"`
	PreparedAt        time.Time      `json:"preparedAt"`
}

func toItems(entries []cart.Entry) []itemResponse {
	out := make([]itemResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, itemResponse{
			ID:               e.ID,
			Name:             e.Name,
			Amount:           e.Amount,
			UnitPrice:        e.UnitPrice,
			Quantity:         e.Quantity,
			LineTotal:        e.LineTotal(),
			LineTotalDisplay: render.Money(e.LineTotal()),
		})
	}
	return out
}

func toCartResponse(cartID string, v storefront.View) cartResponse {
	resp := cartResponse{
		CartID:            cartID,
		Items:             toItems(v.Entries),
		ItemCount:         v.ItemCount,
		GrandTotal:        v.GrandTotal,
		GrandTotalDisplay: render.Money(v.GrandTotal),
		Empty:             v.Empty,
		CheckoutEnabled:   v.CheckoutEnabled,
	}
	if v.Empty {
		resp.Message = render.EmptyCartMessage
	}
	return resp
}

func toCheckoutResponse(status string, s storefront.CheckoutSummary) checkoutResponse {
	return checkoutResponse{
		Status:            status,
		CartID:            s.CartID,
		Items:             toItems(s.Lines),
		ItemCount:         s.ItemCount,
		GrandTotal:        s.GrandTotal,
		GrandTotalDisplay: render.Money(s.GrandTotal),
		PreparedAt:        s.PreparedAt,
	}
}
