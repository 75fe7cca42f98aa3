package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
)

func TestMemoryCatalogQueries(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	all, err := m.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.EqualValues(t, 1, all[0].ID)

	cars, err := m.ByCategory(ctx, "Кроссовер")
	require.NoError(t, err)
	assert.Len(t, cars, 2)

	cars, err = m.Discounted(ctx)
	require.NoError(t, err)
	assert.Len(t, cars, 3)

	cars, err = m.ByFilters(ctx, "toyota", "")
	require.NoError(t, err)
	assert.Len(t, cars, 2)

	cars, err = m.ByFilters(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, cars, 6)

	cars, err = m.ByNameSubstring(ctx, "Camry 50")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Toyota", cars[0].Brand)

	cars, err = m.ByPriceBand(ctx, 12_000_000, 2_000_000)
	require.NoError(t, err)
	assert.Len(t, cars, 2)
}

func TestMemoryReplaceAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.ReplaceAll(ctx, []entity.Car{{Category: "Гибриды", Brand: "Toyota", Model: "Prius", Price: "9 000 000 ₸"}}))

	all, err := m.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Prius", all[0].Model)
}

func TestMemoryHelp(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	sections, err := m.Sections(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	for i := 1; i < len(sections); i++ {
		assert.LessOrEqual(t, sections[i-1].SortIndex, sections[i].SortIndex)
	}

	sec, err := m.SectionByKey(ctx, "docs")
	require.NoError(t, err)
	assert.NotEmpty(t, sec.Questions)

	_, err = m.SectionByKey(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	a, err := m.Find(ctx, "нужна ли страховка")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Contains(t, a.Answer, "страхование")

	a, err = m.Find(ctx, "что-то совсем другое")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestMemoryProfileUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.LoadProfile(ctx, 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	id, err := m.SaveProfile(ctx, entity.Profile{ChatID: 7, Name: "Айдар", Age: 30})
	require.NoError(t, err)
	id2, err := m.SaveProfile(ctx, entity.Profile{ChatID: 7, Name: "Айдар", Age: 31, City: "Алматы"})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	p, err := m.LoadProfile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 31, p.Age)
	assert.Equal(t, "Алматы", p.City)
}

func TestMemoryDialogsConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.SaveAIDialog(ctx, entity.AIDialog{ChatID: int64(i), Status: "ok"})
			_ = m.SaveFeedback(ctx, entity.Feedback{UserID: int64(i), Liked: true})
		}(i)
	}
	wg.Wait()
	assert.Len(t, m.Dialogs(), 50)
	assert.Len(t, m.Feedbacks(), 50)
	assert.False(t, m.Dialogs()[0].CreatedAt.IsZero())
}
