package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"go.uber.org/zap"
)

const (
	// TypeAIDialogSave AI dialog audit yozuvini saqlash vazifasi
	TypeAIDialogSave = "ai_dialog:save"

	queueName = "audit"
)

// NewAIDialogTask audit yozuvidan asynq vazifasi
func NewAIDialogTask(d entity.AIDialog) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAIDialogSave, b)
	opts := []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqQueue Store sifatida: yozuvni Redis navbatiga qo'yadi, AsynqWorker uni bazaga yozadi
type AsynqQueue struct {
	client enqueuer
	closer func() error
}

// NewAsynqQueue Redis ga ulangan navbat
func NewAsynqQueue(opt asynq.RedisClientOpt) *AsynqQueue {
	client := asynq.NewClient(opt)
	return &AsynqQueue{client: client, closer: client.Close}
}

func (q *AsynqQueue) SaveAIDialog(ctx context.Context, d entity.AIDialog) error {
	task, opts, err := NewAIDialogTask(d)
	if err != nil {
		return fmt.Errorf("build audit task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue audit task: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	if q.closer == nil {
		return nil
	}
	return q.closer()
}

// HandleAIDialogTask vazifani o'qib store ga yozadi; buzilgan payload qayta urinilmaydi
func HandleAIDialogTask(store Store, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var d entity.AIDialog
		if err := json.Unmarshal(task.Payload(), &d); err != nil {
			log.Error("invalid audit payload", zap.Error(err))
			return fmt.Errorf("decode audit payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := store.SaveAIDialog(ctx, d); err != nil {
			log.Warn("audit task failed", zap.String("request_id", d.ID), zap.Error(err))
			return err
		}
		return nil
	}
}

// AsynqWorker audit navbatini qayta ishlovchi server
type AsynqWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log *zap.Logger
}

// NewAsynqWorker yangi worker
func NewAsynqWorker(opt asynq.RedisClientOpt, store Store, log *zap.Logger) *AsynqWorker {
	if log == nil {
		log = zap.NewNop()
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{queueName: 1},
		Logger:      log.Sugar(),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAIDialogSave, HandleAIDialogTask(store, log))
	return &AsynqWorker{srv: srv, mux: mux, log: log}
}

// Start serverni fon rejimida ishga tushiradi
func (w *AsynqWorker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start audit worker: %w", err)
	}
	w.log.Info("audit worker started", zap.String("queue", queueName))
	return nil
}

// Shutdown navbatdagi vazifalar tugashini kutib to'xtatadi
func (w *AsynqWorker) Shutdown() {
	w.srv.Shutdown()
}
