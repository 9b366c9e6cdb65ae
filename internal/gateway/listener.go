package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// ErrListenerClosed возвращается после Close.
var ErrListenerClosed = errors.New("listener closed")

// Notification - полученный NOTIFY.
type Notification struct {
	Channel string
	Payload string
}

// Listener - выделенное соединение для LISTEN.
type Listener interface {
	Listen(ctx context.Context, channel string) error
	WaitForNotification(ctx context.Context) (*Notification, error)
	Close() error
}

// ============================================
// pgx/v5
// ============================================

// PGXListener держит одно соединение из пула на время прослушивания.
type PGXListener struct {
	pool   *pgxpool.Pool
	mu     sync.Mutex
	conn   *pgxpool.Conn
	closed bool
}

func NewPGXListener(pool *pgxpool.Pool) *PGXListener {
	return &PGXListener{pool: pool}
}

func (l *PGXListener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrListenerClosed
	}
	if l.conn == nil {
		conn, err := l.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		l.conn = conn
	}

	if _, err := l.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		l.conn.Release()
		l.conn = nil
		return err
	}
	return nil
}

func (l *PGXListener) WaitForNotification(ctx context.Context) (*Notification, error) {
	l.mu.Lock()
	conn := l.conn
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return nil, ErrListenerClosed
	}
	if conn == nil {
		return nil, errors.New("listener is not connected")
	}

	n, err := conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}
	return &Notification{Channel: n.Channel, Payload: n.Payload}, nil
}

// Close возвращает соединение в пул. Ожидание уведомления должно быть
// прервано отменой контекста до вызова Close.
func (l *PGXListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.conn != nil {
		// Соединение с активным LISTEN не возвращается в пул
		_ = l.conn.Hijack().Close(context.Background())
		l.conn = nil
	}
	return nil
}

// ============================================
// lib/pq
// ============================================

// PQListener - запасной вариант на lib/pq со встроенным переподключением.
type PQListener struct {
	listener *pq.Listener
}

func NewPQListener(dsn string, onEvent func(pq.ListenerEventType, error)) *PQListener {
	return &PQListener{
		listener: pq.NewListener(dsn, time.Second, time.Minute, onEvent),
	}
}

func (l *PQListener) Listen(_ context.Context, channel string) error {
	err := l.listener.Listen(channel)
	if errors.Is(err, pq.ErrChannelAlreadyOpen) {
		return nil
	}
	return err
}

func (l *PQListener) WaitForNotification(ctx context.Context) (*Notification, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n, ok := <-l.listener.Notify:
			if !ok {
				return nil, ErrListenerClosed
			}
			// nil приходит после переподключения
			if n == nil {
				continue
			}
			return &Notification{Channel: n.Channel, Payload: n.Extra}, nil
		}
	}
}

func (l *PQListener) Close() error {
	return l.listener.Close()
}

var (
	_ Listener = (*PGXListener)(nil)
	_ Listener = (*PQListener)(nil)
)
