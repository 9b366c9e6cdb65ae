package workers

import (
	"context"
	"time"

	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/session"
)

// SessionLister - источник живых сессий (session.Manager)
type SessionLister interface {
	Sessions() []*session.Session
}

// PendingUploadWorker удаляет просроченные черновики загрузок во всех сессиях
type PendingUploadWorker struct {
	sessions SessionLister
	interval time.Duration
	done     chan struct{}
}

func NewPendingUploadWorker(sessions SessionLister, interval time.Duration) *PendingUploadWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PendingUploadWorker{
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start запускает воркер в фоне; остановка по ctx
func (w *PendingUploadWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Done закрывается после остановки воркера
func (w *PendingUploadWorker) Done() <-chan struct{} {
	return w.done
}

func (w *PendingUploadWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Pending upload worker stopped")
			return
		case now := <-ticker.C:
			w.SweepAt(now)
		}
	}
}

// SweepAt проходит по сессиям один раз и возвращает число удалённых черновиков
func (w *PendingUploadWorker) SweepAt(now time.Time) int {
	removed := 0
	for _, s := range w.sessions.Sessions() {
		n := s.Uploads.Sweep(now)
		if n == 0 {
			continue
		}
		removed += n
		s.Push()
		logger.CtxInfo(s.Context(), "expired pending uploads removed", "count", n)
	}

	if removed > 0 {
		logger.WorkerLog("pending_uploads", "sweep", nil, "removed", removed)
	}
	return removed
}
