// Command horizon runs the recurring-booking horizon extension, either once
// (the default, suited to cron) or as a long-running loop with -loop.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/modules/horizon"
	"roombook/internal/repository"
)

func main() {
	loop := flag.Bool("loop", false, "keep running on the configured interval instead of one shot")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	extender := horizon.NewExtender(
		repository.NewRecurrenceRuleRepository(db),
		repository.NewBookingRepository(db),
		nil,
		cfg.HorizonBufferDays,
		cfg.HorizonExtendDays,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !*loop {
		rep, err := extender.Run(ctx)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("done checked=%d extended=%d created=%d excepted=%d failed=%d",
			rep.RulesChecked, rep.RulesExtended, rep.BookingsCreated, rep.DatesExcepted, rep.RulesFailed)
		return
	}

	stopCh := extender.Schedule(ctx, cfg.HorizonInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	close(stopCh)
}
