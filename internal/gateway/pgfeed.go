package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"artfolio_backend/internal/logger"

	"gorm.io/gorm"
)

var (
	ErrFeedAlreadyStarted = errors.New("feed already started")
	ErrFeedNotStarted     = errors.New("feed not started")
)

// PGFeed публикует события через pg_notify и получает их через LISTEN,
// поэтому подписчики видят вставки, сделанные другими экземплярами сервиса.
type PGFeed struct {
	db             *gorm.DB
	channel        string
	newListener    func(ctx context.Context) (Listener, error)
	reconnectDelay time.Duration

	local *LocalFeed

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPGFeed(db *gorm.DB, channel string, newListener func(ctx context.Context) (Listener, error)) *PGFeed {
	return &PGFeed{
		db:             db,
		channel:        channel,
		newListener:    newListener,
		reconnectDelay: 5 * time.Second,
		local:          NewLocalFeed(),
	}
}

// Publish отправляет NOTIFY. Доставка подписчикам - через цикл Start.
func (f *PGFeed) Publish(ctx context.Context, event ArtworkAdded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", f.channel, string(payload)).Error
}

func (f *PGFeed) Subscribe(ownerID string, handler func(ArtworkAdded)) func() {
	return f.local.Subscribe(ownerID, handler)
}

// Start запускает цикл прослушивания в фоне.
func (f *PGFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		return ErrFeedAlreadyStarted
	}

	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})
	go f.run(ctx)
	return nil
}

// Stop останавливает цикл и ждёт его завершения.
func (f *PGFeed) Stop() error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel = nil
	f.mu.Unlock()

	if cancel == nil {
		return ErrFeedNotStarted
	}
	cancel()
	<-done
	return nil
}

func (f *PGFeed) run(ctx context.Context) {
	defer close(f.done)

	for {
		err := f.listenLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("artwork feed listener failed, reconnecting",
			"channel", f.channel, "error", err, "delay", f.reconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *PGFeed) listenLoop(ctx context.Context) error {
	listener, err := f.newListener(ctx)
	if err != nil {
		return err
	}
	defer listener.Close()

	if err := listener.Listen(ctx, f.channel); err != nil {
		return err
	}
	logger.Info("artwork feed listening", "channel", f.channel)

	for {
		n, err := listener.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		f.handle(n)
	}
}

func (f *PGFeed) handle(n *Notification) {
	if n.Channel != f.channel {
		return
	}
	var event ArtworkAdded
	if err := json.Unmarshal([]byte(n.Payload), &event); err != nil {
		logger.Warn("malformed artwork feed payload", "payload", n.Payload, "error", err)
		return
	}
	if event.ID == "" || event.OwnerID == "" {
		return
	}
	f.local.dispatch(event)
}
