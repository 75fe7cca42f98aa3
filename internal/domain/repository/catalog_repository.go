package repository

import (
	"context"
	"errors"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// ErrNotFound yozuv topilmadi
var ErrNotFound = errors.New("not found")

// CatalogRepository avtomobillar katalogi bo'yicha so'rovlar
type CatalogRepository interface {
	ByCategory(ctx context.Context, category string) ([]entity.Car, error)
	Discounted(ctx context.Context) ([]entity.Car, error)
	// ByFilters bo'sh qiymat = cheklov yo'q
	ByFilters(ctx context.Context, brand, model string) ([]entity.Car, error)
	ByNameSubstring(ctx context.Context, text string) ([]entity.Car, error)
	ByPriceBand(ctx context.Context, center, width int64) ([]entity.Car, error)
	All(ctx context.Context) ([]entity.Car, error)

	// ReplaceAll katalogni to'liq almashtirish (Excel import)
	ReplaceAll(ctx context.Context, cars []entity.Car) error
}
