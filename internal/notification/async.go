package notification

import (
	"context"
	"log"

	"roombook/internal/domain"
)

// Sender is what Async wraps; it matches the port the booking service uses.
type Sender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking) error
	NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) error
	NotifyBookingCancelled(ctx context.Context, b *domain.Booking, reason string) error
	NotifyRecurringRequested(ctx context.Context, rule *domain.RecurrenceRule) error
	NotifyRecurringConfirmed(ctx context.Context, rule *domain.RecurrenceRule) error
	NotifyRecurringCancelled(ctx context.Context, rule *domain.RecurrenceRule, reason string) error
}

// Async dispatches every notification on its own goroutine so delivery
// latency never sits on the request path. Errors are logged and dropped;
// the context handed to the inner sender is detached from the request.
type Async struct {
	inner Sender
}

func NewAsync(inner Sender) *Async {
	return &Async{inner: inner}
}

func (a *Async) dispatch(name string, fn func(context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			log.Printf("notify: %s failed: %v", name, err)
		}
	}()
}

func (a *Async) NotifyBookingCreated(_ context.Context, b *domain.Booking) error {
	a.dispatch("booking_created", func(ctx context.Context) error {
		return a.inner.NotifyBookingCreated(ctx, b)
	})
	return nil
}

func (a *Async) NotifyBookingConfirmed(_ context.Context, b *domain.Booking) error {
	a.dispatch("booking_confirmed", func(ctx context.Context) error {
		return a.inner.NotifyBookingConfirmed(ctx, b)
	})
	return nil
}

func (a *Async) NotifyBookingCancelled(_ context.Context, b *domain.Booking, reason string) error {
	a.dispatch("booking_cancelled", func(ctx context.Context) error {
		return a.inner.NotifyBookingCancelled(ctx, b, reason)
	})
	return nil
}

func (a *Async) NotifyRecurringRequested(_ context.Context, rule *domain.RecurrenceRule) error {
	a.dispatch("recurring_requested", func(ctx context.Context) error {
		return a.inner.NotifyRecurringRequested(ctx, rule)
	})
	return nil
}

func (a *Async) NotifyRecurringConfirmed(_ context.Context, rule *domain.RecurrenceRule) error {
	a.dispatch("recurring_confirmed", func(ctx context.Context) error {
		return a.inner.NotifyRecurringConfirmed(ctx, rule)
	})
	return nil
}

func (a *Async) NotifyRecurringCancelled(_ context.Context, rule *domain.RecurrenceRule, reason string) error {
	a.dispatch("recurring_cancelled", func(ctx context.Context) error {
		return a.inner.NotifyRecurringCancelled(ctx, rule, reason)
	})
	return nil
}
