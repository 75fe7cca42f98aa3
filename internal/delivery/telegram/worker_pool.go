package telegram

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrRateLimited foydalanuvchi juda tez yozmoqda
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrQueueFull chat navbati to'lgan
	ErrQueueFull = errors.New("worker queue full")
	// ErrPoolClosed pool to'xtatilgan
	ErrPoolClosed = errors.New("worker pool closed")
)

const limiterIdleTTL = 10 * time.Minute

// Job bitta kiruvchi hodisani qayta ishlash vazifasi
type Job struct {
	ChatID int64
	UserID int64
	Run    func(ctx context.Context)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WorkerPool chat id bo'yicha shard qilingan worker pool: bitta chat hodisalari
// doim bitta goroutine da navbat bilan bajariladi.
type WorkerPool struct {
	shards  []chan Job
	timeout time.Duration
	log     *zap.Logger

	limit rate.Limit
	burst int

	limiterMu sync.Mutex
	limiters  map[int64]*limiterEntry

	closeMu sync.RWMutex
	closed  bool

	depth    atomic.Int64
	wg       sync.WaitGroup
	stopJan  chan struct{}
	janitorW sync.WaitGroup
}

// NewWorkerPool yangi worker pool yaratish va workerlarni ishga tushirish.
// perSecond <= 0 bo'lsa rate limit o'chiriladi.
func NewWorkerPool(workers, queueSize int, perSecond float64, burst int, timeout time.Duration, log *zap.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	p := &WorkerPool{
		shards:   make([]chan Job, workers),
		timeout:  timeout,
		log:      log,
		limit:    limit,
		burst:    burst,
		limiters: make(map[int64]*limiterEntry),
		stopJan:  make(chan struct{}),
	}
	for i := range p.shards {
		p.shards[i] = make(chan Job, queueSize)
		p.wg.Add(1)
		go p.worker(i)
	}
	p.janitorW.Add(1)
	go p.janitor(time.Minute)

	log.Info("worker pool started", zap.Int("workers", workers), zap.Int("queue_size", queueSize))
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.shards[id] {
		p.depth.Add(-1)
		p.process(job)
	}
}

// process bitta vazifani timeout va panic himoyasi bilan bajarish
func (p *WorkerPool) process(job Job) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic in worker", zap.Int64("chat_id", job.ChatID), zap.Any("panic", r))
		}
	}()
	job.Run(ctx)
}

// Submit vazifani chat navbatiga qo'yish (bloklamaydi)
func (p *WorkerPool) Submit(job Job) error {
	if !p.allow(job.UserID) {
		return ErrRateLimited
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.depth.Add(1)
	select {
	case p.shards[p.shard(job.ChatID)] <- job:
		return nil
	default:
		p.depth.Add(-1)
		return ErrQueueFull
	}
}

func (p *WorkerPool) shard(chatID int64) int {
	n := int64(len(p.shards))
	idx := chatID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (p *WorkerPool) allow(userID int64) bool {
	if p.limit == rate.Inf {
		return true
	}
	p.limiterMu.Lock()
	e, ok := p.limiters[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.limiters[userID] = e
	}
	e.lastSeen = time.Now()
	p.limiterMu.Unlock()
	return e.limiter.Allow()
}

// janitor uzoq vaqt jim turgan foydalanuvchilar limiterlarini tozalaydi
func (p *WorkerPool) janitor(every time.Duration) {
	defer p.janitorW.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopJan:
			return
		case now := <-ticker.C:
			p.evictIdle(now)
		}
	}
}

func (p *WorkerPool) evictIdle(now time.Time) int {
	p.limiterMu.Lock()
	defer p.limiterMu.Unlock()
	n := 0
	for id, e := range p.limiters {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(p.limiters, id)
			n++
		}
	}
	return n
}

// Depth navbatda kutayotgan vazifalar soni
func (p *WorkerPool) Depth() int64 {
	return p.depth.Load()
}

// Shutdown yangi vazifalarni qabul qilishni to'xtatadi va navbatdagilarni bajarib bo'lishini kutadi
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.closeMu.Lock()
	if !p.closed {
		p.closed = true
		for _, ch := range p.shards {
			close(ch)
		}
		close(p.stopJan)
	}
	p.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.janitorW.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
