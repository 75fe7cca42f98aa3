package usecase

import (
	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// State suhbat holati
type State int

const (
	StateIdle State = iota
	StateAskName
	StateAskAge
	StateAskCity
	StateFilterBrand
	StateFilterModel
	StateSearchByName
	StateSearchByPrice
	StateAskAI
	StateAskAIConfirm
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateAskName:       "ask_name",
	StateAskAge:        "ask_age",
	StateAskCity:       "ask_city",
	StateFilterBrand:   "filter_brand",
	StateFilterModel:   "filter_model",
	StateSearchByName:  "search_by_name",
	StateSearchByPrice: "search_by_price",
	StateAskAI:         "ask_ai",
	StateAskAIConfirm:  "ask_ai_confirm",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// onboarding holatlarida bekor qilish so'zlari ishlamaydi
func (s State) isOnboarding() bool {
	return s == StateAskName || s == StateAskAge || s == StateAskCity
}

func (s State) isAIFlow() bool {
	return s == StateAskAI || s == StateAskAIConfirm
}

// flow holat va shu holatga tegishli vaqtinchalik ma'lumot (draft).
// Har bir holatning o'z turi bor, boshqa holatning maydonlariga murojaat qilib bo'lmaydi.
type flow interface {
	state() State
}

type (
	idleFlow          struct{}
	askNameFlow       struct{}
	askAgeFlow        struct{ name string }
	askCityFlow       struct {
		name string
		age  int
	}
	filterBrandFlow   struct{}
	filterModelFlow   struct{ brand string }
	searchByNameFlow  struct{}
	searchByPriceFlow struct{}
	askAIFlow         struct{}
	askAIConfirmFlow  struct{}
)

func (idleFlow) state() State          { return StateIdle }
func (askNameFlow) state() State       { return StateAskName }
func (askAgeFlow) state() State        { return StateAskAge }
func (askCityFlow) state() State       { return StateAskCity }
func (filterBrandFlow) state() State   { return StateFilterBrand }
func (filterModelFlow) state() State   { return StateFilterModel }
func (searchByNameFlow) state() State  { return StateSearchByName }
func (searchByPriceFlow) state() State { return StateSearchByPrice }
func (askAIFlow) state() State         { return StateAskAI }
func (askAIConfirmFlow) state() State  { return StateAskAIConfirm }

// hasDraft multi-step input yig'ilayotganmi
func hasDraft(f flow) bool {
	switch f.(type) {
	case askAgeFlow, askCityFlow, filterModelFlow:
		return true
	}
	return false
}

// Role tarixdagi xabar muallifi
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry AI suhbat tarixidagi bitta yozuv
type HistoryEntry struct {
	Role Role
	Text string
}

// RecommendationMatch AI tavsiyasidan topilgan katalog yozuvi
type RecommendationMatch struct {
	Car   entity.Car
	Token string
}

// PendingFeedback oxirgi javob (feedback tugmasi uchun)
type PendingFeedback struct {
	Question string
	Answer   string
}

// AIContext AI-assist rejimidagi kontekst
type AIContext struct {
	history      []HistoryEntry
	suggestions  []RecommendationMatch
	lastFeedback *PendingFeedback
}

// Append adds an entry, evicting the oldest once the bound is reached.
func (c *AIContext) Append(role Role, text string) {
	c.history = append(c.history, HistoryEntry{Role: role, Text: text})
	if over := len(c.history) - constants.MaxHistoryEntries; over > 0 {
		trimmed := make([]HistoryEntry, constants.MaxHistoryEntries)
		copy(trimmed, c.history[over:])
		c.history = trimmed
	}
}

// History tarix nusxasi (xronologik tartibda)
func (c *AIContext) History() []HistoryEntry {
	out := make([]HistoryEntry, len(c.history))
	copy(out, c.history)
	return out
}

func (c *AIContext) SetSuggestions(list []RecommendationMatch) {
	if len(list) > constants.MaxSuggestions {
		list = list[:constants.MaxSuggestions]
	}
	c.suggestions = append([]RecommendationMatch(nil), list...)
}

func (c *AIContext) Suggestions() []RecommendationMatch {
	return append([]RecommendationMatch(nil), c.suggestions...)
}

func (c *AIContext) SetLastFeedback(question, answer string) {
	c.lastFeedback = &PendingFeedback{Question: question, Answer: answer}
}

// TakeLastFeedback reads and clears the pending feedback entry.
func (c *AIContext) TakeLastFeedback() (PendingFeedback, bool) {
	if c.lastFeedback == nil {
		return PendingFeedback{}, false
	}
	fb := *c.lastFeedback
	c.lastFeedback = nil
	return fb, true
}

// Reset AI kontekstini tozalash
func (c *AIContext) Reset() {
	c.history = nil
	c.suggestions = nil
	c.lastFeedback = nil
}

// Session bitta chatning suhbat holati
type Session struct {
	ChatID  int64
	Profile *entity.Profile
	AI      AIContext

	flow           flow
	profileChecked bool

	// turn AI so'rovlari avlodi; eskirgan javoblarni aniqlash uchun
	turn    uint64
	pending bool
}

func newSession(chatID int64) *Session {
	return &Session{ChatID: chatID, flow: idleFlow{}}
}

// State joriy holat
func (s *Session) State() State {
	return s.flow.state()
}

// leaveTo switches flow; leaving the AI-assist flow drops its context and invalidates an in-flight turn.
func (s *Session) leaveTo(next flow) {
	if s.State().isAIFlow() || s.pending {
		s.AI.Reset()
		s.turn++
		s.pending = false
	}
	s.flow = next
}

// enterAI AI-assist rejimiga (qayta) kirish
func (s *Session) enterAI() {
	s.AI.Reset()
	s.turn++
	s.pending = false
	s.flow = askAIFlow{}
}

// SessionView sessiyaning o'qish uchun nusxasi
type SessionView struct {
	ChatID       int64
	State        State
	HasDraft     bool
	Profile      *entity.Profile
	History      []HistoryEntry
	Suggestions  []RecommendationMatch
	LastFeedback *PendingFeedback
	Pending      bool
}

func (s *Session) view() SessionView {
	v := SessionView{
		ChatID:      s.ChatID,
		State:       s.State(),
		HasDraft:    hasDraft(s.flow),
		History:     s.AI.History(),
		Suggestions: s.AI.Suggestions(),
		Pending:     s.pending,
	}
	if s.Profile != nil {
		p := *s.Profile
		v.Profile = &p
	}
	if s.AI.lastFeedback != nil {
		fb := *s.AI.lastFeedback
		v.LastFeedback = &fb
	}
	return v
}
