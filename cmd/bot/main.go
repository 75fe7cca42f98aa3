package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/yourusername/car-advisor-bot/config"
	"github.com/yourusername/car-advisor-bot/internal/delivery/httpapi"
	"github.com/yourusername/car-advisor-bot/internal/delivery/telegram"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"github.com/yourusername/car-advisor-bot/internal/infrastructure/audit"
	"github.com/yourusername/car-advisor-bot/internal/infrastructure/gemini"
	"github.com/yourusername/car-advisor-bot/internal/infrastructure/ollama"
	"github.com/yourusername/car-advisor-bot/internal/infrastructure/parser"
	"github.com/yourusername/car-advisor-bot/internal/infrastructure/storage"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"github.com/yourusername/car-advisor-bot/pkg/logger"
	"go.uber.org/zap"
)

const (
	auditBuffer     = 256
	shutdownTimeout = 30 * time.Second
)

// store barcha repository portlarini bitta backend da birlashtiradi
type store interface {
	repository.CatalogRepository
	repository.HelpRepository
	repository.UserRepository
	repository.DialogRepository
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	initDefaultTimezone()

	// Konfiguratsiyani yuklash
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}

	// Logger ni ishga tushirish
	lg, err := logger.Init(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("❌ Logger yaratilmadi: %v", err)
	}
	defer lg.Sync() //nolint:errcheck
	lg.Info("🚀 Ilova ishga tushmoqda...", zap.String("provider", cfg.AIProvider), zap.String("db", cfg.DBDriver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AllowEmptySecrets {
		if missing := cfg.MissingSecrets(); len(missing) > 0 {
			lg.Warn("Secretlar yetishmayapti, bot vaqtincha ishga tushmaydi", zap.String("missing", strings.Join(missing, ", ")))
			<-ctx.Done()
			return
		}
	}

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("❌ Ilova xatosi", zap.Error(err))
	}
	lg.Info("✅ Bot to'xtatildi.")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	// 1. Storage
	st, err := openStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer st.Close()
	lg.Info("✅ Storage tayyor", zap.String("driver", cfg.DBDriver))

	if cfg.CatalogXLSX != "" {
		if err := importCatalog(ctx, cfg.CatalogXLSX, st, lg); err != nil {
			return err
		}
	}

	// 2. AI backend
	ai, closeAI, err := newAIRepository(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeAI()
	lg.Info("✅ AI client tayyor", zap.String("provider", cfg.AIProvider))

	// 3. Audit: Redis bo'lsa asynq orqali, bo'lmasa to'g'ridan-to'g'ri store ga
	var (
		auditStore audit.Store = st
		worker     *audit.AsynqWorker
		queue      *audit.AsynqQueue
		rdb        *redis.Client
	)
	if cfg.RedisAddr != "" {
		opt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		queue = audit.NewAsynqQueue(opt)
		defer queue.Close()
		worker = audit.NewAsynqWorker(opt, st, lg)
		if err := worker.Start(); err != nil {
			return err
		}
		auditStore = queue
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
	}
	sink := audit.NewChannelSink(auditStore, auditBuffer, lg)
	go sink.Run()

	// 4. Conversation engine
	invoker := usecase.NewAIInvoker(ai, cfg.AITimeout, lg)
	engine := usecase.NewConversationUseCase(usecase.NewSessionStore(), st, st, st, st, invoker, sink, lg)

	// 5. Telegram bot handler
	bot, err := telegram.NewBotHandler(cfg.TelegramToken, engine, telegram.Options{
		MediaDir:      cfg.MediaDir,
		Workers:       cfg.WorkerCount,
		RatePerSecond: cfg.RatePerSecond,
	}, lg)
	if err != nil {
		return fmt.Errorf("bot handler: %w", err)
	}
	lg.Info("✅ Telegram bot tayyor", zap.String("username", bot.GetBotUsername()))

	// 6. Ops HTTP
	var srv *http.Server
	if cfg.HTTPAddr != "" {
		checks := map[string]httpapi.Check{"db": st.Ping}
		if rdb != nil {
			checks["redis"] = httpapi.RedisCheck(rdb)
		}
		h := httpapi.NewHandler(engine, checks, bot.QueueDepth, sink.Dropped, lg)
		srv = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(h, lg))
		go func() {
			lg.Info("ops server listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	lg.Info("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")
	if err := bot.Start(ctx); err != nil {
		lg.Error("❌ Bot xatosi", zap.Error(err))
	}

	// Graceful shutdown
	lg.Info("⏳ To'xtatish signali qabul qilindi...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("ops server shutdown", zap.Error(err))
		}
	}
	if err := bot.Shutdown(shutdownCtx); err != nil {
		lg.Warn("worker pool drain", zap.Error(err))
	}
	if err := engine.Wait(shutdownCtx); err != nil {
		lg.Warn("AI turns still running", zap.Error(err))
	}
	if err := sink.Close(shutdownCtx); err != nil {
		lg.Warn("audit flush", zap.Error(err), zap.Int("pending", sink.Pending()))
	}
	if worker != nil {
		worker.Shutdown()
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (store, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	case config.DriverPostgres:
		s, err := storage.OpenPostgres(ctx, cfg.DatabaseURL, lg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return seeded(ctx, s)
	default:
		s, err := storage.OpenSQLite(ctx, cfg.SQLitePath, lg)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return seeded(ctx, s)
	}
}

func seeded(ctx context.Context, s *storage.SQLStore) (store, error) {
	if err := s.Seed(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

// importCatalog CATALOG_XLSX faylidan katalogni almashtirish
func importCatalog(ctx context.Context, path string, catalog repository.CatalogRepository, lg *zap.Logger) error {
	cars, err := parser.NewExcelCatalogParser(lg).ParseFile(path)
	if err != nil {
		return fmt.Errorf("catalog import: %w", err)
	}
	if len(cars) == 0 {
		lg.Warn("catalog file has no rows, keeping current catalog", zap.String("path", path))
		return nil
	}
	if err := catalog.ReplaceAll(ctx, cars); err != nil {
		return fmt.Errorf("catalog import: %w", err)
	}
	lg.Info("✅ Katalog import qilindi", zap.String("path", path), zap.Int("cars", len(cars)))
	return nil
}

func newAIRepository(ctx context.Context, cfg *config.Config, lg *zap.Logger) (repository.AIRepository, func(), error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		c, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, lg)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	default:
		c, err := ollama.NewClient(cfg.OllamaURL, cfg.OllamaAPIKey, cfg.AIModel, lg)
		if err != nil {
			return nil, nil, fmt.Errorf("ollama client: %w", err)
		}
		return c, func() {}, nil
	}
}

func initDefaultTimezone() {
	const tzName = "Asia/Almaty"
	if loc, err := time.LoadLocation(tzName); err == nil {
		time.Local = loc
		return
	}
	time.Local = time.FixedZone(tzName, 5*60*60)
}
