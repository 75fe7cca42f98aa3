package repository

import (
	"context"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// HelpRepository yordam bo'limlari va tayyor javoblar
type HelpRepository interface {
	// Find avval aniq moslik, keyin qism-satr moslik (registrsiz). Topilmasa nil, nil.
	Find(ctx context.Context, text string) (*entity.CannedAnswer, error)
	Sections(ctx context.Context) ([]entity.HelpSection, error)
	// SectionByKey topilmasa ErrNotFound
	SectionByKey(ctx context.Context, key string) (*entity.HelpSection, error)
}
