// Package render turns storefront views into text.
package render

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/storefront"
)

const EmptyCartMessage = "Your cart is empty"

// Money formats v as dollars rounded half away from zero to two places.
func Money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// Text writes the cart list, item count and total after every change.
type Text struct {
	W io.Writer
}

func (t Text) Render(v storefront.View) {
	if v.Empty {
		fmt.Fprintln(t.W, EmptyCartMessage)
	} else {
		writeLines(t.W, v.Entries)
	}
	fmt.Fprintf(t.W, "Items: %d\n", v.ItemCount)
	fmt.Fprintf(t.W, "Total: %s\n", Money(v.GrandTotal))
}

func (t Text) RenderCheckout(s storefront.CheckoutSummary) {
	_ = CheckoutSummary(t.W, s)
}

// CheckoutSummary writes the lines shown before payment is confirmed.
func CheckoutSummary(w io.Writer, s storefront.CheckoutSummary) error {
	if _, err := fmt.Fprintf(w, "Checkout for cart %s\n", s.CartID); err != nil {
		return err
	}
	writeLines(w, s.Lines)
	_, err := fmt.Fprintf(w, "Total: %s\n", Money(s.GrandTotal))
	return err
}

func writeLines(w io.Writer, entries []cart.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s × %d  %s\n", e.Name, e.Amount, e.Quantity, Money(e.LineTotal()))
	}
}
