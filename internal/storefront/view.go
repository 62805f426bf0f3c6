package storefront

import (
	"time"

	"github.com/Os-De/hs-rp.com/internal/cart"
)

// View is what renderers receive after every change.
type View struct {
	Entries         []cart.Entry `json:"entries"`
	GrandTotal      float64      `json:"grandTotal"`
	ItemCount       int          `json:"itemCount"`
	Empty           bool         `json:"empty"`
	CheckoutEnabled bool         `json:"checkoutEnabled"`
}

type CheckoutSummary struct {
	CartID     string       `json:"cartId"`
	Lines      []cart.Entry `json:"lines"`
	ItemCount  int          `json:"itemCount"`
	GrandTotal float64      `json:"grandTotal"`
	PreparedAt time.Time    `json:"preparedAt"`
}

type Renderer interface {
	Render(View)
}

// CheckoutRenderer is implemented by renderers that also show the summary
// produced by BeginCheckout.
type CheckoutRenderer interface {
	RenderCheckout(CheckoutSummary)
}

type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

func viewOf(s *cart.Store) View {
	return View{
		Entries:         s.Entries(),
		GrandTotal:      s.GrandTotal(),
		ItemCount:       s.ItemCount(),
		Empty:           s.IsEmpty(),
		CheckoutEnabled: !s.IsEmpty(),
	}
}
