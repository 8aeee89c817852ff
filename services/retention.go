package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/intervox-ai/backend/repository"
)

const DefaultRetentionSweepInterval = 24 * time.Hour

// RetentionService periodically archives sessions older than the configured
// age threshold. Archiving is a soft delete; rows are never removed.
type RetentionService struct {
	store    *repository.SessionStore
	days     int
	interval time.Duration
	stop     chan struct{}
}

func NewRetentionService(store *repository.SessionStore, days int, interval time.Duration) *RetentionService {
	if interval <= 0 {
		interval = DefaultRetentionSweepInterval
	}
	return &RetentionService{
		store:    store,
		days:     days,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately so a restart
// does not postpone overdue archiving by a full interval.
func (s *RetentionService) Start() {
	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
	slog.Info("Retention sweep started", "days", s.days, "interval", s.interval.String())
}

// Stop terminates the sweep loop.
func (s *RetentionService) Stop() {
	close(s.stop)
}

func (s *RetentionService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	archived, err := s.store.CleanupOld(ctx, s.days)
	if err != nil {
		slog.Error("Retention sweep failed", "error", err, "days", s.days)
		return
	}
	if archived > 0 {
		sessionsArchived.Add(float64(archived))
	}
}
