package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"safewatch/internal/repository"
)

// invalidator is the slice of the cache the sweeper needs: eviction of
// swept incidents, nothing more.
type invalidator interface {
	Delete(ctx context.Context, key string) error
}

// RetentionSweeper periodically deletes incidents that have been resolved
// longer than the retention window. Deletion is safe because the archive
// row was written in the same transaction that resolved the incident.
type RetentionSweeper struct {
	incidentRepo repository.IncidentRepository
	cache        invalidator
	retention    time.Duration
	interval     time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewRetentionSweeper creates a sweeper with the given retention window
// and tick interval.
func NewRetentionSweeper(incidentRepo repository.IncidentRepository, cache invalidator, retention, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		incidentRepo: incidentRepo,
		cache:        cache,
		retention:    retention,
		interval:     interval,
	}
}

// Start launches the background sweep loop. Tick failures are logged and
// swallowed; the next tick re-queries current state.
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := s.RunOnce(runCtx, time.Now().UTC()); err != nil {
					log.Printf("retention sweep: %v", err)
				} else if n > 0 {
					log.Printf("retention sweep: deleted %d incident(s)", n)
				}
			case <-runCtx.Done():
				return
			}
		}
	}()
}

// Stop cancels the sweep loop and waits for it to exit, bounded by ctx.
func (s *RetentionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	wasRunning := s.running
	s.mu.Unlock()
	if !wasRunning || cancel == nil {
		return nil
	}
	cancel()

	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep pass: it deletes, in one transaction,
// every incident resolved before now minus the retention window, and
// returns the number deleted.
func (s *RetentionSweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.retention)
	var swept []uint
	err := s.incidentRepo.WithTransaction(ctx, func(ctx context.Context, incidents repository.IncidentRepository, _ repository.UserRepository, _ repository.ArchiveRepository) error {
		stale, err := incidents.ListResolvedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("query stale incidents: %w", err)
		}
		for i := range stale {
			if err := incidents.Delete(ctx, &stale[i]); err != nil {
				return fmt.Errorf("delete incident %d: %w", stale[i].ID, err)
			}
			swept = append(swept, stale[i].ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Evict after commit so a rolled-back tick leaves the cache untouched.
	if s.cache != nil {
		for _, id := range swept {
			_ = s.cache.Delete(ctx, incidentCacheKey(id))
		}
	}
	return len(swept), nil
}
