// Package storefront ties the cart to its persisted copy, its renderers and
// the checkout flow. Every mutation is saved before renderers see it, and a
// failed save leaves the cart as it was.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Os-De/hs-rp.com/internal/cart"
	"github.com/Os-De/hs-rp.com/internal/events"
	"github.com/Os-De/hs-rp.com/internal/persistence"
)

// Persister is satisfied by *persistence.Adapter.
type Persister interface {
	Load(ctx context.Context) ([]cart.Entry, error)
	Save(ctx context.Context, entries []cart.Entry) error
}

type Storefront struct {
	mu        sync.Mutex
	store     *cart.Store
	persist   Persister
	renderers []Renderer
	publisher events.CartEventsPublisher
	payment   PaymentStep
	cartID    string
	logger    *log.Logger
	now       func() time.Time
	tracer    trace.Tracer
}

type Option func(*Storefront)

func WithLogger(logger *log.Logger) Option {
	return func(s *Storefront) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRenderers(renderers ...Renderer) Option {
	return func(s *Storefront) { s.renderers = append(s.renderers, renderers...) }
}

func WithPublisher(p events.CartEventsPublisher) Option {
	return func(s *Storefront) { s.publisher = p }
}

func WithPayment(p PaymentStep) Option {
	return func(s *Storefront) {
		if p != nil {
			s.payment = p
		}
	}
}

func WithCartID(id string) Option {
	return func(s *Storefront) {
		if id != "" {
			s.cartID = id
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Storefront) {
		if now != nil {
			s.now = now
		}
	}
}

// New restores the persisted cart and renders it once. Corrupt persisted
// state is logged and replaced by an empty cart on the next save; storage
// errors are returned.
func New(ctx context.Context, persist Persister, opts ...Option) (*Storefront, error) {
	s := &Storefront{
		store:   cart.NewStore(),
		persist: persist,
		cartID:  uuid.NewString(),
		logger:  log.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  otel.Tracer("storefront"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.payment == nil {
		s.payment = PlaceholderPayment{Logger: s.logger}
	}

	ctx, span := s.tracer.Start(ctx, "storefront.load")
	defer span.End()

	entries, err := persist.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrCorruptState):
		s.logger.Printf("warning: %v; starting with an empty cart", err)
		span.AddEvent("corrupt state discarded")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, fmt.Errorf("load cart: %w", err)
	default:
		if err := s.store.Restore(entries); err != nil {
			s.logger.Printf("warning: persisted cart rejected: %v; starting with an empty cart", err)
		}
	}

	span.SetAttributes(attribute.Int("cart.entries", s.store.Len()))
	s.notify(viewOf(s.store))
	return s, nil
}

func (s *Storefront) CartID() string { return s.cartID }

// AddItem adds it to the cart, defaulting to one unit.
func (s *Storefront) AddItem(ctx context.Context, it cart.Item) (View, error) {
	return s.mutate(ctx, "add_item", func(c *cart.Store) error {
		return c.Add(it)
	}, attribute.String("product.id", it.ID))
}

// RemoveItem is a no-op for ids not in the cart; the cart is still saved.
func (s *Storefront) RemoveItem(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, "remove_item", func(c *cart.Store) error {
		c.RemoveItem(id)
		return nil
	}, attribute.String("product.id", id))
}

func (s *Storefront) Clear(ctx context.Context) (View, error) {
	return s.mutate(ctx, "clear", func(c *cart.Store) error {
		c.Clear()
		return nil
	})
}

func (s *Storefront) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewOf(s.store)
}

func (s *Storefront) GetEntries() []cart.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Entries()
}

func (s *Storefront) GrandTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GrandTotal()
}

func (s *Storefront) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ItemCount()
}

// BeginCheckout returns the summary shown before payment. The cart is not
// changed.
func (s *Storefront) BeginCheckout(ctx context.Context) (CheckoutSummary, error) {
	_, span := s.tracer.Start(ctx, "storefront.begin_checkout")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.IsEmpty() {
		return CheckoutSummary{}, ErrEmptyCart
	}
	summary := s.summaryLocked()
	s.logger.Printf("checkout initiated: cart %s, %d items, total %.2f", summary.CartID, summary.ItemCount, summary.GrandTotal)
	for _, r := range s.renderers {
		if cr, ok := r.(CheckoutRenderer); ok {
			cr.RenderCheckout(summary)
		}
	}
	return summary, nil
}

// ConfirmCheckout runs the payment step, publishes CartCheckedOut and then
// clears the cart. A failure before the clear leaves the cart untouched.
func (s *Storefront) ConfirmCheckout(ctx context.Context, meta events.PublishMetadata) (CheckoutSummary, error) {
	ctx, span := s.tracer.Start(ctx, "storefront.confirm_checkout",
		trace.WithAttributes(attribute.String("cart.id", s.cartID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.IsEmpty() {
		return CheckoutSummary{}, ErrEmptyCart
	}
	summary := s.summaryLocked()

	if err := s.payment.Pay(ctx, summary); err != nil {
		return CheckoutSummary{}, s.failCheckout(span, "payment", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCartCheckedOut(ctx, s.cartID, summary.Lines, meta); err != nil {
			return CheckoutSummary{}, s.failCheckout(span, "publish", err)
		}
	}

	before := s.store.Entries()
	s.store.Clear()
	if err := s.persist.Save(ctx, s.store.Entries()); err != nil {
		s.rollback(before)
		return CheckoutSummary{}, s.failCheckout(span, "persist", err)
	}

	s.notify(viewOf(s.store))
	span.SetAttributes(attribute.Int("cart.items", summary.ItemCount))
	return summary, nil
}

func (s *Storefront) mutate(ctx context.Context, op string, fn func(*cart.Store) error, attrs ...attribute.KeyValue) (View, error) {
	ctx, span := s.tracer.Start(ctx, "storefront."+op, trace.WithAttributes(attrs...))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Entries()
	if err := fn(s.store); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" rejected")
		return viewOf(s.store), err
	}

	if err := s.persist.Save(ctx, s.store.Entries()); err != nil {
		s.rollback(before)
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return viewOf(s.store), fmt.Errorf("%s: %w", op, err)
	}

	v := viewOf(s.store)
	span.SetAttributes(attribute.Int("cart.items", v.ItemCount))
	s.notify(v)
	return v, nil
}

func (s *Storefront) rollback(before []cart.Entry) {
	if err := s.store.Restore(before); err != nil {
		s.logger.Printf("warning: restoring cart after failed save: %v", err)
	}
}

func (s *Storefront) failCheckout(span trace.Span, step string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, step+" failed")
	s.logger.Printf("checkout %s failed for cart %s: %v", step, s.cartID, err)
	return &CheckoutError{Step: step, Err: err}
}

func (s *Storefront) summaryLocked() CheckoutSummary {
	return CheckoutSummary{
		CartID:     s.cartID,
		Lines:      s.store.Entries(),
		ItemCount:  s.store.ItemCount(),
		GrandTotal: s.store.GrandTotal(),
		PreparedAt: s.now(),
	}
}

func (s *Storefront) notify(v View) {
	for _, r := range s.renderers {
		r.Render(v)
	}
}
