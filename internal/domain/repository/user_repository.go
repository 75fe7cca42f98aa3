package repository

import (
	"context"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// UserRepository foydalanuvchi profillari
type UserRepository interface {
	// SaveProfile chat_id bo'yicha upsert, saqlangan ID ni qaytaradi
	SaveProfile(ctx context.Context, profile entity.Profile) (int64, error)
	// LoadProfile topilmasa ErrNotFound
	LoadProfile(ctx context.Context, chatID int64) (*entity.Profile, error)
}

// DialogRepository feedback va AI dialog audit yozuvlari
type DialogRepository interface {
	SaveFeedback(ctx context.Context, feedback entity.Feedback) error
	SaveAIDialog(ctx context.Context, dialog entity.AIDialog) error
}
