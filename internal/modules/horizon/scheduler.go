package horizon

import (
	"context"
	"log"
	"time"
)

// Schedule runs the extender immediately and then on every tick until the
// returned stop channel is closed or ctx is cancelled.
func (e *Extender) Schedule(ctx context.Context, interval time.Duration) chan struct{} {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if _, err := e.Run(ctx); err != nil {
			log.Printf("horizon: scheduled run error: %v", err)
		}

		for {
			select {
			case <-ticker.C:
				if _, err := e.Run(ctx); err != nil {
					log.Printf("horizon: scheduled run error: %v", err)
				}
			case <-stopCh:
				log.Println("horizon: scheduler stopped")
				return
			case <-ctx.Done():
				log.Println("horizon: scheduler stopped (context done)")
				return
			}
		}
	}()

	log.Printf("horizon: scheduler started with interval %v", interval)
	return stopCh
}
