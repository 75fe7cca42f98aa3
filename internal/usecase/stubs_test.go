package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
)

func testCatalog() []entity.Car {
	return []entity.Car{
		{Category: "Легковой", Brand: "Toyota", Model: "Camry 50", Price: "12 000 000 ₸", Description: "Седан", Image: "camry.jpg", Specs: "2.5 л", Discounted: true},
		{Category: "Легковой", Brand: "Hyundai", Model: "Elantra", Price: "10 500 000 ₸", Description: "Седан", Image: "elantra.jpg", Specs: "1.6 л"},
		{Category: "Кроссовер", Brand: "Kia", Model: "Sportage", Price: "15 800 000 ₸", Description: "Кроссовер", Specs: "2.0 л", Discounted: true},
		{Category: "Кроссовер", Brand: "Toyota", Model: "RAV4", Price: "17 200 000 ₸", Description: "Кроссовер", Specs: "2.0 л"},
		{Category: "Грузовой", Brand: "Isuzu", Model: "NQR 75", Price: "22 000 000 ₸", Description: "Грузовик", Specs: "5.2 л"},
		{Category: "Грузовой", Brand: "MAN", Model: "TGS 26.440", Price: "55 000 000 ₸", Description: "Тягач", Specs: "10.5 л"},
	}
}

type stubCatalog struct {
	mu       sync.Mutex
	cars     []entity.Car
	err      error
	lastBand [2]int64
	filters  [2]string
}

func (s *stubCatalog) ByCategory(ctx context.Context, category string) ([]entity.Car, error) {
	var out []entity.Car
	for _, c := range s.cars {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *stubCatalog) Discounted(ctx context.Context) ([]entity.Car, error) {
	var out []entity.Car
	for _, c := range s.cars {
		if c.Discounted {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *stubCatalog) ByFilters(ctx context.Context, brand, model string) ([]entity.Car, error) {
	s.mu.Lock()
	s.filters = [2]string{brand, model}
	s.mu.Unlock()
	var out []entity.Car
	for _, c := range s.cars {
		if brand != "" && !strings.Contains(strings.ToLower(c.Brand), strings.ToLower(brand)) {
			continue
		}
		if model != "" && !strings.Contains(strings.ToLower(c.Model), strings.ToLower(model)) {
			continue
		}
		out = append(out, c)
	}
	return out, s.err
}

func (s *stubCatalog) ByNameSubstring(ctx context.Context, text string) ([]entity.Car, error) {
	var out []entity.Car
	for _, c := range s.cars {
		if strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(text)) {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *stubCatalog) ByPriceBand(ctx context.Context, center, width int64) ([]entity.Car, error) {
	s.mu.Lock()
	s.lastBand = [2]int64{center - width, center + width}
	s.mu.Unlock()
	var out []entity.Car
	for _, c := range s.cars {
		if v, ok := c.PriceValue(); ok && v >= center-width && v <= center+width {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *stubCatalog) All(ctx context.Context) ([]entity.Car, error) {
	return append([]entity.Car(nil), s.cars...), s.err
}

func (s *stubCatalog) ReplaceAll(ctx context.Context, cars []entity.Car) error {
	s.cars = cars
	return nil
}

type stubHelp struct {
	answers  []entity.CannedAnswer
	sections []entity.HelpSection
}

func (s *stubHelp) Find(ctx context.Context, text string) (*entity.CannedAnswer, error) {
	for _, a := range s.answers {
		if strings.EqualFold(a.Question, strings.TrimSpace(text)) {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *stubHelp) Sections(ctx context.Context) ([]entity.HelpSection, error) {
	return s.sections, nil
}

func (s *stubHelp) SectionByKey(ctx context.Context, key string) (*entity.HelpSection, error) {
	for _, sec := range s.sections {
		if sec.Key == key {
			sec := sec
			return &sec, nil
		}
	}
	return nil, repository.ErrNotFound
}

type stubUsers struct {
	mu       sync.Mutex
	profiles map[int64]entity.Profile
	nextID   int64
	loadErr  error
}

func newStubUsers() *stubUsers {
	return &stubUsers{profiles: make(map[int64]entity.Profile)}
}

func (s *stubUsers) SaveProfile(ctx context.Context, p entity.Profile) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.profiles[p.ChatID]; ok {
		p.ID = old.ID
	} else {
		s.nextID++
		p.ID = s.nextID
	}
	s.profiles[p.ChatID] = p
	return p.ID, nil
}

func (s *stubUsers) failLoads(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}

func (s *stubUsers) LoadProfile(ctx context.Context, chatID int64) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	p, ok := s.profiles[chatID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type stubDialogs struct {
	mu       sync.Mutex
	feedback []entity.Feedback
}

func (s *stubDialogs) SaveFeedback(ctx context.Context, f entity.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, f)
	return nil
}

func (s *stubDialogs) SaveAIDialog(ctx context.Context, d entity.AIDialog) error { return nil }

type stubAI struct {
	fn func(ctx context.Context, prompt string) (string, error)
}

func (s *stubAI) Ask(ctx context.Context, prompt string) (string, error) {
	return s.fn(ctx, prompt)
}

type recordingAudit struct {
	mu      sync.Mutex
	records []entity.AIDialog
}

func (r *recordingAudit) Record(d entity.AIDialog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, d)
}

func (r *recordingAudit) all() []entity.AIDialog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AIDialog(nil), r.records...)
}

type recordingResponder struct {
	mu      sync.Mutex
	replies []Reply
}

func (r *recordingResponder) Respond(ctx context.Context, chatID int64, replies ...Reply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, replies...)
}

func (r *recordingResponder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rep := range r.replies {
		if rep.Text != "" {
			out = append(out, rep.Text)
		}
	}
	return out
}

func (r *recordingResponder) count(kind ReplyKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rep := range r.replies {
		if rep.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingResponder) reset() {
	r.mu.Lock()
	r.replies = nil
	r.mu.Unlock()
}
