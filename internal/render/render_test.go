package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/storefront"
)

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:       "$0.00",
		32:      "$32.00",
		12.345:  "$12.35",
		4.99:    "$4.99",
		0.1 * 3: "$0.30",
		1234.5:  "$1234.50",
		-2.005:  "$-2.01",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in), "Money(%v)", in)
	}
}

func TestTextRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	Text{W: &buf}.Render(storefront.View{Empty: true})

	assert.Equal(t, "Your cart is empty\nItems: 0\nTotal: $0.00\n", buf.String())
}

func TestTextRenderLines(t *testing.T) {
	var buf bytes.Buffer
	Text{W: &buf}.Render(storefront.View{
		Entries: []cart.Entry{
			{ID: "a", Name: "VIP", Amount: "30 days", UnitPrice: 12.5, Quantity: 2},
			{ID: "b", Name: "Starter Pack", Amount: "500 coins", UnitPrice: 7, Quantity: 1},
		},
		GrandTotal: 32,
		ItemCount:  3,
	})

	assert.Equal(t,
		"VIP  30 days × 2  $25.00\n"+
			"Starter Pack  500 coins × 1  $7.00\n"+
			"Items: 3\n"+
			"Total: $32.00\n",
		buf.String())
}

func TestCheckoutSummary(t *testing.T) {
	var buf bytes.Buffer
	err := CheckoutSummary(&buf, storefront.CheckoutSummary{
		CartID:     "cart-1",
		Lines:      []cart.Entry{{ID: "a", Name: "VIP", Amount: "30 days", UnitPrice: 12.5, Quantity: 2}},
		ItemCount:  2,
		GrandTotal: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "Checkout for cart cart-1\nVIP  30 days × 2  $25.00\nTotal: $25.00\n", buf.String())
}

func TestTextRendersCheckoutThroughStorefront(t *testing.T) {
	var buf bytes.Buffer
	var _ storefront.CheckoutRenderer = Text{W: &buf}

	Text{W: &buf}.RenderCheckout(storefront.CheckoutSummary{CartID: "c", GrandTotal: 1.5})
	assert.Equal(t, "Checkout for cart c\nTotal: $1.50\n", buf.String())
}
