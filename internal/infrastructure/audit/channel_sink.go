package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"go.uber.org/zap"
)

// Store audit yozuvlarini saqlovchi (DialogRepository yoki AsynqQueue)
type Store interface {
	SaveAIDialog(ctx context.Context, dialog entity.AIDialog) error
}

const (
	defaultBuffer = 256
	writeTimeout  = 5 * time.Second
)

// ChannelSink fire-and-forget audit: Record hech qachon bloklanmaydi, to'lib qolsa yozuv tashlanadi
type ChannelSink struct {
	ch      chan entity.AIDialog
	store   Store
	log     *zap.Logger
	dropped atomic.Int64
	failed  atomic.Int64

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

// NewChannelSink yangi sink; Run alohida goroutine da ishga tushiriladi
func NewChannelSink(store Store, buffer int, log *zap.Logger) *ChannelSink {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChannelSink{
		ch:    make(chan entity.AIDialog, buffer),
		store: store,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Record navbatga qo'yish (bloklanmaydi)
func (s *ChannelSink) Record(d entity.AIDialog) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.ch <- d:
	default:
		s.dropped.Add(1)
		s.log.Warn("audit queue full, record dropped", zap.String("request_id", d.ID), zap.Int64("chat_id", d.ChatID))
	}
}

// Run navbatdagi yozuvlarni store ga yozadi; Close dan keyin qolganlarini yozib tugaydi
func (s *ChannelSink) Run() {
	defer close(s.done)
	for d := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := s.store.SaveAIDialog(ctx, d); err != nil {
			s.failed.Add(1)
			s.log.Warn("audit write failed", zap.String("request_id", d.ID), zap.Error(err))
		}
		cancel()
	}
}

// Close yangi yozuvlarni qabul qilishni to'xtatadi va navbat bo'shashini kutadi
func (s *ChannelSink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped navbat to'lganligi sababli tashlangan yozuvlar soni
func (s *ChannelSink) Dropped() int64 { return s.dropped.Load() }

// Failed store xatosi bilan yakunlangan yozuvlar soni
func (s *ChannelSink) Failed() int64 { return s.failed.Load() }

// Pending navbatdagi yozuvlar soni
func (s *ChannelSink) Pending() int { return len(s.ch) }
