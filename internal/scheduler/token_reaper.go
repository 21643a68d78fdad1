package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/freakishcode/Blog-App/internal/database/accounts"
)

// TokenReaper periodically clears expired verification and session tokens.
// The auth workflows reject expired tokens at read time either way; the
// reaper only keeps stale rows from accumulating.
type TokenReaper struct {
	repo     *accounts.Repository
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewTokenReaper creates a reaper running on the given cron schedule.
func NewTokenReaper(repo *accounts.Repository, schedule string) *TokenReaper {
	return &TokenReaper{
		repo:     repo,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduled sweeps.
func (r *TokenReaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return nil
	}

	entryID, err := r.cron.AddFunc(r.schedule, r.sweep)
	if err != nil {
		return err
	}

	r.entryID = entryID
	r.cron.Start()
	r.isRunning = true
	log.Printf("Token reaper started with schedule %q", r.schedule)

	return nil
}

// Stop halts scheduling. A sweep in progress finishes.
func (r *TokenReaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return
	}

	r.cron.Remove(r.entryID)
	r.cron.Stop()
	r.isRunning = false
	log.Println("Token reaper stopped")
}

// RunOnce performs a single sweep immediately.
func (r *TokenReaper) RunOnce() (int64, error) {
	return r.repo.ReapExpiredTokens(time.Now())
}

func (r *TokenReaper) sweep() {
	cleared, err := r.RunOnce()
	if err != nil {
		log.Printf("Token reaper sweep failed: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("Token reaper cleared %d expired tokens", cleared)
	}
}
