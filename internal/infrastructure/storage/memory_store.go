package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
)

// MemoryStore barcha repository portlarining in-memory varianti (DB_DRIVER=memory va testlar uchun)
type MemoryStore struct {
	mu       sync.RWMutex
	cars     []entity.Car
	nextCar  int64
	sections []entity.HelpSection
	canned   []entity.CannedAnswer
	profiles map[int64]entity.Profile
	nextUser int64
	feedback []entity.Feedback
	dialogs  []entity.AIDialog
}

var (
	_ repository.CatalogRepository = (*MemoryStore)(nil)
	_ repository.HelpRepository    = (*MemoryStore)(nil)
	_ repository.UserRepository    = (*MemoryStore)(nil)
	_ repository.DialogRepository  = (*MemoryStore)(nil)
)

// NewMemoryStore standart katalog va yordam ma'lumotlari bilan to'ldirilgan store
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		sections: DefaultHelpSections(),
		canned:   DefaultCannedAnswers(),
		profiles: make(map[int64]entity.Profile),
	}
	_ = m.ReplaceAll(context.Background(), DefaultCars())
	return m
}

func (m *MemoryStore) snapshot() []entity.Car {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.Car, len(m.cars))
	copy(out, m.cars)
	return out
}

func (m *MemoryStore) where(pred func(entity.Car) bool) []entity.Car {
	return selectCars(m.snapshot(), pred)
}

func (m *MemoryStore) ByCategory(ctx context.Context, category string) ([]entity.Car, error) {
	return m.where(func(c entity.Car) bool { return c.Category == category }), nil
}

func (m *MemoryStore) Discounted(ctx context.Context) ([]entity.Car, error) {
	return m.where(func(c entity.Car) bool { return c.Discounted }), nil
}

func (m *MemoryStore) ByFilters(ctx context.Context, brand, model string) ([]entity.Car, error) {
	brand, model = strings.TrimSpace(brand), strings.TrimSpace(model)
	return m.where(func(c entity.Car) bool { return matchesFilters(c, brand, model) }), nil
}

func (m *MemoryStore) ByNameSubstring(ctx context.Context, text string) ([]entity.Car, error) {
	return m.where(func(c entity.Car) bool { return matchesName(c, text) }), nil
}

func (m *MemoryStore) ByPriceBand(ctx context.Context, center, width int64) ([]entity.Car, error) {
	return filterPriceBand(m.snapshot(), center, width), nil
}

func (m *MemoryStore) All(ctx context.Context) ([]entity.Car, error) {
	return m.snapshot(), nil
}

func (m *MemoryStore) ReplaceAll(ctx context.Context, cars []entity.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars = make([]entity.Car, 0, len(cars))
	m.nextCar = 0
	for _, c := range cars {
		m.nextCar++
		c.ID = m.nextCar
		m.cars = append(m.cars, c)
	}
	return nil
}

func (m *MemoryStore) Find(ctx context.Context, text string) (*entity.CannedAnswer, error) {
	m.mu.RLock()
	entries := append(append([]entity.CannedAnswer(nil), m.canned...), cannedFromSections(m.sections)...)
	m.mu.RUnlock()
	return matchCanned(entries, text), nil
}

func (m *MemoryStore) Sections(ctx context.Context) ([]entity.HelpSection, error) {
	m.mu.RLock()
	out := append([]entity.HelpSection(nil), m.sections...)
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortIndex < out[j].SortIndex })
	return out, nil
}

func (m *MemoryStore) SectionByKey(ctx context.Context, key string) (*entity.HelpSection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sections {
		if s.Key == key {
			s.Questions = append([]entity.HelpQuestion(nil), s.Questions...)
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemoryStore) SaveProfile(ctx context.Context, p entity.Profile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.profiles[p.ChatID]; ok {
		p.ID = old.ID
	} else {
		m.nextUser++
		p.ID = m.nextUser
	}
	m.profiles[p.ChatID] = p
	return p.ID, nil
}

func (m *MemoryStore) LoadProfile(ctx context.Context, chatID int64) (*entity.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[chatID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) SaveFeedback(ctx context.Context, f entity.Feedback) error {
	m.mu.Lock()
	m.feedback = append(m.feedback, f)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveAIDialog(ctx context.Context, d entity.AIDialog) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m.mu.Lock()
	m.dialogs = append(m.dialogs, d)
	m.mu.Unlock()
	return nil
}

// Feedbacks saqlangan feedbacklar nusxasi
func (m *MemoryStore) Feedbacks() []entity.Feedback {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entity.Feedback(nil), m.feedback...)
}

// Dialogs saqlangan AI dialoglar nusxasi
func (m *MemoryStore) Dialogs() []entity.AIDialog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entity.AIDialog(nil), m.dialogs...)
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
