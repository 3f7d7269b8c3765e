// Command seed fills a development database with a small, deterministic
// dataset: rooms, an organization with members and a compensation, one
// confirmed one-off booking and one recurring rule with its first month of
// occurrences.
package main

import (
	"context"
	"log"
	"time"

	"roombook/internal/audit"
	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/modules/booking"
	"roombook/internal/notification"
	"roombook/internal/permission"
	"roombook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM audit_events")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM recurrence_rules")
	db.Exec("DELETE FROM compensations")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM organizations")

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	ruleRepo := repository.NewRecurrenceRuleRepository(db)

	log.Println("Creating rooms...")
	rooms := []*domain.Room{
		{Name: "Rehearsal Hall", Description: "Large hall with a stage", Location: "Ground floor", Capacity: 40, IsActive: true},
		{Name: "Practice Room A", Description: "Small room with a piano", Location: "First floor", Capacity: 6, IsActive: true},
		{Name: "Meeting Room", Location: "First floor", Capacity: 12, IsActive: true},
	}
	for _, r := range rooms {
		if err := roomRepo.Create(ctx, r); err != nil {
			log.Fatal("room create failed:", err)
		}
	}

	log.Println("Creating organization...")
	org := &domain.Organization{Name: "Brass Band", ContactEmail: "band@example.org", IsActive: true}
	if err := orgRepo.Create(ctx, org); err != nil {
		log.Fatal("organization create failed:", err)
	}

	comp := &domain.Compensation{OrganizationID: org.ID, Name: "Standard rate", HourlyRate: 40}
	if err := orgRepo.CreateCompensation(ctx, comp); err != nil {
		log.Fatal("compensation create failed:", err)
	}

	log.Println("Creating users...")
	member := &domain.User{Email: "member@example.org", Name: "Alex Carter", Role: domain.RoleMember, OrganizationID: org.ID}
	staff := &domain.User{Email: "staff@example.org", Name: "Sam Reed", Role: domain.RoleStaff, OrganizationID: org.ID}
	for _, u := range []*domain.User{member, staff} {
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatal("user create failed:", err)
		}
	}

	svc := booking.NewService(
		bookingRepo, ruleRepo, roomRepo, orgRepo,
		booking.NewMaterializer(bookingRepo, cfg.MaterializeWorkers),
		permission.NewChecker(userRepo, roomRepo, orgRepo),
		notification.NewLogSender(),
		audit.NewRecorder(db),
		nil, cfg.HorizonBufferDays,
	)

	log.Println("Creating one-off booking...")
	nextMonday := nextWeekday(time.Now().UTC(), time.Monday)
	oneOff, err := svc.CreateBooking(ctx, booking.CreateBookingRequest{
		Title:          "Section rehearsal",
		RoomID:         rooms[1].ID,
		OrganizationID: org.ID,
		UserID:         member.ID,
		StartTime:      time.Date(nextMonday.Year(), nextMonday.Month(), nextMonday.Day(), 18, 0, 0, 0, time.UTC),
		EndTime:        time.Date(nextMonday.Year(), nextMonday.Month(), nextMonday.Day(), 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		log.Fatal("booking create failed:", err)
	}
	if _, err := svc.ConfirmBooking(ctx, oneOff.ID, staff.ID); err != nil {
		log.Fatal("booking confirm failed:", err)
	}

	log.Println("Creating recurring rule...")
	startDate := nextWeekday(time.Now().UTC().AddDate(0, 0, 7), time.Wednesday).Format("2006-01-02")
	rule, drafts, err := svc.CreateRecurring(ctx, booking.CreateRecurringRequest{
		Title:          "Full band rehearsal",
		RoomID:         rooms[0].ID,
		OrganizationID: org.ID,
		UserID:         member.ID,
		CompensationID: &comp.ID,
		Pattern: booking.PatternRequest{
			Frequency:  "weekly",
			StartDate:  startDate,
			StartClock: "19:00",
			EndClock:   "21:30",
			Timezone:   cfg.DefaultTimezone,
			End:        "after_count",
			Count:      12,
			Weekdays:   []string{"WE"},
		},
	})
	if err != nil {
		log.Fatal("recurring create failed:", err)
	}
	if _, err := svc.ConfirmRecurring(ctx, rule.ID, staff.ID); err != nil {
		log.Fatal("recurring confirm failed:", err)
	}

	log.Printf("Seed completed: rooms=%d rule_id=%d occurrences=%d", len(rooms), rule.ID, len(drafts))
	log.Printf("Member: %s  Staff: %s", member.Email, staff.Email)
}

func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
