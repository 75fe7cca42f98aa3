package telegram

import (
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	defaultJobTimeout = 30 * time.Second
	defaultQueueSize  = 64
	defaultRateBurst  = 5
)

// BotHandler Telegram transporti: update loop, worker pool va javoblarni chizish
type BotHandler struct {
	bot      botAPI
	username string
	engine   Engine
	pool     *WorkerPool
	mediaDir string
	log      *zap.Logger

	// Loading xabarlari (chat bo'yicha)
	waitingMu   sync.Mutex
	waitingMsgs map[int64]waitingMessage

	// Yordam bo'limi javoblari (keyingi menyu harakatida o'chiriladi)
	helpMu   sync.Mutex
	helpMsgs map[int64][]waitingMessage
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(token string, eng Engine, opts Options, log *zap.Logger) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h := newBotHandler(bot, eng, opts, log)
	h.username = bot.Self.UserName
	return h, nil
}

func newBotHandler(bot botAPI, eng Engine, opts Options, log *zap.Logger) *BotHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 16
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = defaultRateBurst
	}
	return &BotHandler{
		bot:         bot,
		engine:      eng,
		pool:        NewWorkerPool(opts.Workers, opts.QueueSize, opts.RatePerSecond, opts.RateBurst, defaultJobTimeout, log),
		mediaDir:    opts.MediaDir,
		log:         log,
		waitingMsgs: make(map[int64]waitingMessage),
		helpMsgs:    make(map[int64][]waitingMessage),
	}
}

// GetBotUsername bot username ni qaytarish
func (h *BotHandler) GetBotUsername() string {
	return h.username
}

// QueueDepth worker pool navbatidagi vazifalar soni
func (h *BotHandler) QueueDepth() int64 {
	return h.pool.Depth()
}
