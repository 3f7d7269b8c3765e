package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"roombook/internal/domain"
	"roombook/internal/pkg/timeutil"
	"roombook/internal/recurrence"
	"roombook/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	rules    RuleRepository
	rooms    RoomRepository
	orgs     OrganizationRepository
	mat      *Materializer
	perms    PermissionChecker
	notifs   NotificationSender
	audit    AuditRecorder
	now      Clock

	// horizonDays bounds how far ahead recurring bookings are materialized
	// at creation; the horizon job extends them later.
	horizonDays int
}

func NewService(
	bookings BookingRepository,
	rules RuleRepository,
	rooms RoomRepository,
	orgs OrganizationRepository,
	mat *Materializer,
	perms PermissionChecker,
	notifs NotificationSender,
	audit AuditRecorder,
	now Clock,
	horizonDays int,
) *Service {
	if now == nil {
		now = time.Now
	}
	if horizonDays < 1 {
		horizonDays = 730
	}
	return &Service{
		bookings:    bookings,
		rules:       rules,
		rooms:       rooms,
		orgs:        orgs,
		mat:         mat,
		perms:       perms,
		notifs:      notifs,
		audit:       audit,
		now:         now,
		horizonDays: horizonDays,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrValidation
	}
	if req.StartTime.Before(s.now()) {
		return nil, ErrValidation
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if !room.IsActive {
		return nil, ErrNotAvailable
	}
	if _, err := s.orgs.GetByID(ctx, req.OrganizationID); err != nil {
		return nil, asNotFound(err)
	}

	ok, err := s.perms.CanBook(ctx, req.UserID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	booked, err := s.bookings.IsBooked(ctx, req.RoomID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrNotAvailable
	}

	loc, err := timeutil.Location(req.Timezone)
	if err != nil {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		Title:          req.Title,
		RoomID:         req.RoomID,
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Status:         domain.BookingPending,
		StartDate:      timeutil.LocalDate(req.StartTime, loc),
		StartClock:     timeutil.LocalClock(req.StartTime, loc),
		EndClock:       timeutil.LocalClock(req.EndTime, loc),
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, asConflict(err)
	}

	s.audit.Record(ctx, "booking", b.ID, "created", fmt.Sprintf("room=%d start=%s", b.RoomID, b.StartDate))
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, b)
	}

	return b, nil
}

func (s *Service) ConfirmBooking(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, asNotFound(err)
	}

	if err := s.requireManage(ctx, actorID, b.OrganizationID); err != nil {
		return nil, err
	}

	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	// Advisory re-check; the exclusion constraint has the final word.
	booked, err := s.bookings.IsBooked(ctx, b.RoomID, b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrOverbooking
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingConfirmed); err != nil {
		return nil, asConflict(err)
	}

	s.audit.Record(ctx, "booking", bookingID, "confirmed", "")
	b.Status = domain.BookingConfirmed
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingConfirmed(ctx, b)
	}
	return b, nil
}

func (s *Service) CancelBooking(ctx context.Context, bookingID, actorID int64, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, asNotFound(err)
	}

	if err := s.requireManage(ctx, actorID, b.OrganizationID); err != nil {
		return nil, err
	}

	if b.Status == domain.BookingCancelled {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.bookings.CancelWithReason(ctx, bookingID, reason); err != nil {
		return nil, asNotFound(err)
	}

	s.audit.Record(ctx, "booking", bookingID, "cancelled", reason)
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCancelled(ctx, b, reason)
	}

	return s.bookings.GetByID(ctx, bookingID)
}

// PreviewRecurring compiles the pattern, expands it and materializes drafts
// without persisting anything. The availability flags can go stale before a
// later save; the exclusion constraint settles that race at confirm time.
func (s *Service) PreviewRecurring(ctx context.Context, req CreateRecurringRequest) (*RecurringPreview, error) {
	rule, rate, _, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}

	dates, err := s.initialWindowDates(rule)
	if err != nil {
		return nil, err
	}

	drafts, err := s.mat.Materialize(ctx, rule, rate, dates)
	if err != nil {
		return nil, err
	}

	previews := make([]OccurrencePreview, 0, len(drafts))
	for _, d := range drafts {
		previews = append(previews, OccurrencePreview{
			Date:      d.StartDate,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Available: d.Status != domain.BookingUnavailable,
			Amount:    d.Amount,
		})
	}

	return &RecurringPreview{
		RuleString:  rule.RuleString,
		FirstDate:   rule.FirstDate,
		LastDate:    rule.LastDate,
		Bookable:    Bookable(drafts),
		Occurrences: previews,
	}, nil
}

// CreateRecurring persists the rule and its initially materialized bookings.
func (s *Service) CreateRecurring(ctx context.Context, req CreateRecurringRequest) (*domain.RecurrenceRule, []domain.Booking, error) {
	ok, err := s.perms.CanBook(ctx, req.UserID, req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrForbidden
	}

	rule, rate, horizon, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	dates, err := s.initialWindowDates(rule)
	if err != nil {
		return nil, nil, err
	}
	if len(dates) == 0 {
		return nil, nil, ErrValidation
	}

	drafts, err := s.mat.Materialize(ctx, rule, rate, dates)
	if err != nil {
		return nil, nil, err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, nil, err
	}

	ptrs := make([]*domain.Booking, len(drafts))
	for i := range drafts {
		drafts[i].RecurrenceRuleID = &rule.ID
		ptrs[i] = &drafts[i]
	}
	if err := s.bookings.CreateBatch(ctx, ptrs); err != nil {
		// The batch itself is atomic; roll the rule back so a failed
		// create never leaves an orphan rule behind.
		if derr := s.rules.Delete(ctx, rule.ID); derr != nil {
			log.Printf("recurring create rollback failed rule_id=%d error=%v", rule.ID, derr)
		}
		return nil, nil, asConflict(err)
	}
	if err := s.rules.SetHorizonDate(ctx, rule.ID, horizon); err != nil {
		return nil, nil, err
	}
	rule.HorizonDate = &horizon

	s.audit.Record(ctx, "recurrence_rule", rule.ID, "created",
		fmt.Sprintf("room=%d occurrences=%d", rule.RoomID, len(drafts)))
	if s.notifs != nil {
		_ = s.notifs.NotifyRecurringRequested(ctx, rule)
	}

	return rule, drafts, nil
}

func (s *Service) ConfirmRecurring(ctx context.Context, ruleID, actorID int64) (*domain.RecurrenceRule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, asNotFound(err)
	}

	if err := s.requireManage(ctx, actorID, rule.OrganizationID); err != nil {
		return nil, err
	}

	if rule.Status != domain.RulePending {
		return nil, ErrInvalidStatusTransition
	}

	if _, err := s.bookings.UpdateStatusByRule(ctx, ruleID, domain.BookingPending, domain.BookingConfirmed); err != nil {
		return nil, asConflict(err)
	}
	if err := s.rules.UpdateStatus(ctx, ruleID, domain.RuleConfirmed); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "recurrence_rule", ruleID, "confirmed", "")
	rule.Status = domain.RuleConfirmed
	if s.notifs != nil {
		_ = s.notifs.NotifyRecurringConfirmed(ctx, rule)
	}
	return rule, nil
}

func (s *Service) CancelRecurring(ctx context.Context, ruleID, actorID int64, reason string) (*domain.RecurrenceRule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, asNotFound(err)
	}

	if err := s.requireManage(ctx, actorID, rule.OrganizationID); err != nil {
		return nil, err
	}

	if rule.Status == domain.RuleCancelled {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.rules.CancelWithReason(ctx, ruleID, reason); err != nil {
		return nil, err
	}
	for _, from := range []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed} {
		if _, err := s.bookings.UpdateStatusByRule(ctx, ruleID, from, domain.BookingCancelled); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, "recurrence_rule", ruleID, "cancelled", reason)
	rule.Status = domain.RuleCancelled
	if s.notifs != nil {
		_ = s.notifs.NotifyRecurringCancelled(ctx, rule, reason)
	}
	return rule, nil
}

// DeleteRecurring removes a rule. Its bookings survive only through explicit
// decoupling; without it the delete is refused.
func (s *Service) DeleteRecurring(ctx context.Context, ruleID, actorID int64, decouple bool) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return asNotFound(err)
	}

	if err := s.requireManage(ctx, actorID, rule.OrganizationID); err != nil {
		return err
	}

	if !decouple {
		return ErrValidation
	}

	detached, err := s.bookings.DecoupleFromRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return err
	}

	s.audit.Record(ctx, "recurrence_rule", ruleID, "deleted", fmt.Sprintf("decoupled=%d", detached))
	return nil
}

func (s *Service) GetBusySlots(ctx context.Context, roomID int64, from, to time.Time) ([]repository.BusySlot, error) {
	if !to.After(from) {
		return nil, ErrValidation
	}
	return s.bookings.BusySlots(ctx, roomID, from, to)
}

func (s *Service) ListOrganizationBookings(ctx context.Context, orgID, actorID int64, f repository.BookingFilter) ([]BookingDetails, error) {
	if err := s.requireManage(ctx, actorID, orgID); err != nil {
		return nil, err
	}

	f.OrganizationID = &orgID
	rows, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]BookingDetails, 0, len(rows))
	for _, b := range rows {
		out = append(out, toDetails(b))
	}
	return out, nil
}

// RuleTotalAmount derives the aggregate over the rule's non-cancelled
// bookings; the total is never stored.
func (s *Service) RuleTotalAmount(ctx context.Context, ruleID int64) (float64, error) {
	if _, err := s.rules.GetByID(ctx, ruleID); err != nil {
		return 0, asNotFound(err)
	}
	return s.bookings.SumAmountByRule(ctx, ruleID)
}

// buildRule validates the request and assembles the unsaved rule plus the
// resolved hourly rate and the initial horizon date.
func (s *Service) buildRule(ctx context.Context, req CreateRecurringRequest) (*domain.RecurrenceRule, *float64, string, error) {
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, nil, "", asNotFound(err)
	}
	if !room.IsActive {
		return nil, nil, "", ErrNotAvailable
	}
	if _, err := s.orgs.GetByID(ctx, req.OrganizationID); err != nil {
		return nil, nil, "", asNotFound(err)
	}

	p, loc, err := req.Pattern.toPattern()
	if err != nil {
		return nil, nil, "", err
	}

	ruleString, err := recurrence.Compile(p)
	if err != nil {
		return nil, nil, "", err
	}
	r, err := recurrence.Parse(ruleString)
	if err != nil {
		return nil, nil, "", err
	}
	r.Location = loc

	first, ok := r.FirstOccurrence()
	if !ok {
		return nil, nil, "", &recurrence.ValidationError{Field: "pattern", Reason: "pattern produces no occurrences"}
	}

	rule := &domain.RecurrenceRule{
		Title:          req.Title,
		RuleString:     ruleString,
		Timezone:       req.Pattern.Timezone,
		Status:         domain.RulePending,
		RoomID:         req.RoomID,
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
		FirstDate:      timeutil.LocalDate(first, loc),
		StartClock:     req.Pattern.StartClock,
		EndClock:       req.Pattern.EndClock,
	}
	if last, ok := r.LastOccurrence(); ok {
		d := timeutil.LocalDate(last, loc)
		rule.LastDate = &d
	}

	var rate *float64
	if req.CompensationID != nil {
		comp, err := s.orgs.GetCompensationByID(ctx, *req.CompensationID)
		if err != nil {
			return nil, nil, "", asNotFound(err)
		}
		if comp.OrganizationID != req.OrganizationID {
			return nil, nil, "", ErrForbidden
		}
		rule.CompensationID = &comp.ID
		rate = &comp.HourlyRate

		startDay, _ := timeutil.ParseDate(req.Pattern.StartDate)
		st, err1 := timeutil.CombineUTC(startDay, req.Pattern.StartClock, loc)
		en, err2 := timeutil.CombineUTC(startDay, req.Pattern.EndClock, loc)
		if err1 == nil && err2 == nil {
			amount := math.Round(en.Sub(st).Hours()*comp.HourlyRate*100) / 100
			rule.AmountPerOccurrence = &amount
		}
	}

	horizonEnd := s.now().AddDate(0, 0, s.horizonDays)
	horizon := timeutil.LocalDate(horizonEnd, loc)
	if rule.LastDate != nil && *rule.LastDate < horizon {
		horizon = *rule.LastDate
	}

	return rule, rate, horizon, nil
}

// initialWindowDates expands the rule up to its initial horizon.
func (s *Service) initialWindowDates(rule *domain.RecurrenceRule) ([]time.Time, error) {
	r, err := recurrence.Parse(rule.RuleString)
	if err != nil {
		return nil, err
	}
	if r.Location, err = timeutil.Location(rule.Timezone); err != nil {
		return nil, err
	}
	windowEnd := s.now().UTC().AddDate(0, 0, s.horizonDays)
	return r.Occurrences(time.Time{}, windowEnd)
}

func (s *Service) requireManage(ctx context.Context, actorID, orgID int64) error {
	ok, err := s.perms.CanManage(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// asConflict maps storage-level exclusion/uniqueness violations to the
// user-facing conflict error.
func asConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23P01 exclusion_violation, 23505 unique_violation
		if pgErr.Code == "23P01" || pgErr.Code == "23505" {
			return ErrOverbooking
		}
	}
	return err
}
