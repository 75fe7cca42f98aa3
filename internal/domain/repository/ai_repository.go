package repository

import "context"

// AIRepository generativ model bilan ishlash uchun interface
type AIRepository interface {
	// Ask promptni yuborib, model javobini qaytaradi
	Ask(ctx context.Context, prompt string) (string, error)
}
