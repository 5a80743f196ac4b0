package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtanuDevOps/blood-project/internal/config"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

// The web client only flipped a donor back to "available" lazily, when that
// donor opened their own profile. This worker does the sweep for everyone so
// directory listings stop showing stale cooldown badges.
func main() {
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("[worker] MONGO_URI env var is not set")
	}

	interval := 1 * time.Hour
	if v := os.Getenv("COOLDOWN_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("[worker] invalid COOLDOWN_POLL_INTERVAL %q: %v", v, err)
		}
		interval = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	donorSvc, err := services.NewMongoDonorService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[worker] mongo donor service init failed: %v", err)
	}
	defer donorSvc.Close(context.Background())

	log.Printf("[worker] cooldown sweep every %s", interval)

	sweep(ctx, donorSvc)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[worker] shutting down")
			return
		case <-ticker.C:
			sweep(ctx, donorSvc)
		}
	}
}

func sweep(ctx context.Context, donorSvc *services.MongoDonorService) {
	released, err := donorSvc.ReleaseExpiredCooldowns(ctx, time.Now().UTC())
	if err != nil {
		// Transient store errors are retried on the next tick.
		log.Printf("[worker] sweep failed: %v", err)
		return
	}
	if released > 0 {
		log.Printf("[worker] released %d donor(s) from cooldown", released)
	}
}
