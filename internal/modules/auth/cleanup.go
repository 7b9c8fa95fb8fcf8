package auth

import (
	"context"
	"log"
	"time"
)

// ScheduleTokenCleanup starts a background goroutine that purges expired and
// used tokens every interval. Close the returned channel to stop it.
func (s *Service) ScheduleTokenCleanup(ctx context.Context, interval time.Duration) chan struct{} {
	if interval <= 0 {
		log.Println("Automatic token cleanup is disabled")
		return nil
	}

	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				start := time.Now()
				deleted, err := s.CleanupTokens(ctx)
				if err != nil {
					log.Printf("Token cleanup error: %v", err)
					continue
				}
				log.Printf("Token cleanup: deleted %d tokens in %v", deleted, time.Since(start))
			case <-stopCh:
				log.Println("Token cleanup stopped")
				return
			case <-ctx.Done():
				log.Println("Token cleanup stopped (context Done)")
				return
			}
		}
	}()

	log.Printf("Token cleanup scheduled every %v", interval)
	return stopCh
}
