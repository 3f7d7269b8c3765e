// Package notification is the outbound side channel for booking events.
// Delivery transports (email, push) plug in behind Sender; the default
// LogSender just records what would have been sent.
package notification

import (
	"context"
	"log"

	"roombook/internal/domain"
)

// LogSender writes every notification to the process log. It stands in for
// a real delivery channel and never fails.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) NotifyBookingCreated(_ context.Context, b *domain.Booking) error {
	log.Printf("notify: booking created id=%d room=%d user=%d start=%s %s",
		b.ID, b.RoomID, b.UserID, b.StartDate, b.StartClock)
	return nil
}

func (s *LogSender) NotifyBookingConfirmed(_ context.Context, b *domain.Booking) error {
	log.Printf("notify: booking confirmed id=%d user=%d", b.ID, b.UserID)
	return nil
}

func (s *LogSender) NotifyBookingCancelled(_ context.Context, b *domain.Booking, reason string) error {
	log.Printf("notify: booking cancelled id=%d user=%d reason=%q", b.ID, b.UserID, reason)
	return nil
}

func (s *LogSender) NotifyRecurringRequested(_ context.Context, rule *domain.RecurrenceRule) error {
	log.Printf("notify: recurring requested rule_id=%d room=%d user=%d first=%s",
		rule.ID, rule.RoomID, rule.UserID, rule.FirstDate)
	return nil
}

func (s *LogSender) NotifyRecurringConfirmed(_ context.Context, rule *domain.RecurrenceRule) error {
	log.Printf("notify: recurring confirmed rule_id=%d user=%d", rule.ID, rule.UserID)
	return nil
}

func (s *LogSender) NotifyRecurringCancelled(_ context.Context, rule *domain.RecurrenceRule, reason string) error {
	log.Printf("notify: recurring cancelled rule_id=%d user=%d reason=%q", rule.ID, rule.UserID, reason)
	return nil
}
