package storefront

import (
	"context"
	"log"
)

// PaymentStep runs between checkout confirmation and clearing the cart.
type PaymentStep interface {
	Pay(ctx context.Context, summary CheckoutSummary) error
}

type PaymentFunc func(ctx context.Context, summary CheckoutSummary) error

func (f PaymentFunc) Pay(ctx context.Context, summary CheckoutSummary) error { return f(ctx, summary) }

// PlaceholderPayment only logs. No money moves.
type PlaceholderPayment struct {
	Logger *log.Logger
}

func (p PlaceholderPayment) Pay(ctx context.Context, summary CheckoutSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Printf("payment placeholder: cart %s, %d items, total %.2f", summary.CartID, summary.ItemCount, summary.GrandTotal)
	}
	return nil
}
