package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"go.uber.org/zap"
)

// errEmptyAnswer model bo'sh javob qaytardi
var errEmptyAnswer = errors.New("empty AI response")

// AIOutcome bitta AI chaqiruvining natijasi
type AIOutcome struct {
	Text    string // foydalanuvchiga ko'rsatiladigan matn (xatoda zaxira xabar)
	Status  string // ok | timeout | error
	Err     error  // faqat diagnostika uchun
	Elapsed time.Duration
}

// AIInvoker calls the AI backend under a hard wall-clock timeout.
type AIInvoker struct {
	ai      repository.AIRepository
	timeout time.Duration
	log     *zap.Logger
}

// NewAIInvoker yangi AIInvoker yaratish
func NewAIInvoker(ai repository.AIRepository, timeout time.Duration, log *zap.Logger) *AIInvoker {
	if timeout <= 0 {
		timeout = constants.DefaultAITimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AIInvoker{ai: ai, timeout: timeout, log: log}
}

// Invoke never returns an error: failures become a fallback text plus a status tag.
// On timeout only the wait is abandoned; the backend call sees a cancelled context and finishes on its own.
func (inv *AIInvoker) Invoke(ctx context.Context, prompt string) AIOutcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("AI backend panic: %v", r)}
			}
		}()
		text, err := inv.ai.Ask(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	out := inv.classify(res.text, res.err)
	out.Elapsed = time.Since(start)
	switch out.Status {
	case constants.AIStatusTimeout:
		inv.log.Warn("AI request timed out", zap.Duration("timeout", inv.timeout), zap.Duration("elapsed", out.Elapsed))
	case constants.AIStatusError:
		inv.log.Error("AI request failed", zap.Error(out.Err), zap.Duration("elapsed", out.Elapsed))
	}
	return out
}

func (inv *AIInvoker) classify(text string, err error) AIOutcome {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return AIOutcome{Text: constants.AITimeoutMessage, Status: constants.AIStatusTimeout, Err: err}
		}
		return AIOutcome{Text: constants.AIErrorMessage, Status: constants.AIStatusError, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return AIOutcome{Text: constants.AIErrorMessage, Status: constants.AIStatusError, Err: errEmptyAnswer}
	}
	return AIOutcome{Text: text, Status: constants.AIStatusOK}
}
