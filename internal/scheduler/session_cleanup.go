// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionCleanupScheduler periodically deletes expired rows from the
// sessions table. The session store's own background cleanup is disabled so
// that the sweep is owned here and stops with the rest of the process.
type SessionCleanupScheduler struct {
	db       *sql.DB
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSessionCleanupScheduler creates a new scheduler instance.
func NewSessionCleanupScheduler(db *sql.DB, schedule string) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		db:       db,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *SessionCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Session cleanup scheduler: started with schedule '%s'", s.schedule)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *SessionCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Session cleanup scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *SessionCleanupScheduler) RunNow() {
	s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *SessionCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *SessionCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep deletes expired sessions. The expiry column holds julianday
// timestamps, matching what the sqlite3 session store writes.
func (s *SessionCleanupScheduler) runSweep() {
	result, err := s.db.Exec("DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		log.Printf("Session cleanup: sweep failed: %v", err)
		return
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		log.Printf("Session cleanup: removed %d expired sessions", deleted)
	}
}
