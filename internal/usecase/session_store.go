package usecase

import (
	"sync"
)

// SessionStore chat ID -> Session. Har bir chat uchun alohida mutex:
// bitta chatning hodisalari ketma-ket, turli chatlar parallel ishlanadi.
type SessionStore struct {
	mu    sync.RWMutex
	slots map[int64]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

// NewSessionStore yangi SessionStore yaratish
func NewSessionStore() *SessionStore {
	return &SessionStore{slots: make(map[int64]*sessionSlot)}
}

func (st *SessionStore) slot(chatID int64) *sessionSlot {
	st.mu.RLock()
	sl, ok := st.slots[chatID]
	st.mu.RUnlock()
	if ok {
		return sl
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sl, ok = st.slots[chatID]; ok {
		return sl
	}
	sl = &sessionSlot{session: newSession(chatID)}
	st.slots[chatID] = sl
	return sl
}

// With runs fn while holding the chat's lock. fn must not call back into the store for the same chat.
func (st *SessionStore) With(chatID int64, fn func(s *Session)) {
	sl := st.slot(chatID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	fn(sl.session)
}

// GetOrCreate sessiyani (kerak bo'lsa yaratib) nusxasini qaytaradi
func (st *SessionStore) GetOrCreate(chatID int64) SessionView {
	var v SessionView
	st.With(chatID, func(s *Session) { v = s.view() })
	return v
}

func (st *SessionStore) ResetAIContext(chatID int64) {
	st.With(chatID, func(s *Session) { s.AI.Reset() })
}

func (st *SessionStore) AppendHistory(chatID int64, role Role, text string) {
	st.With(chatID, func(s *Session) { s.AI.Append(role, text) })
}

func (st *SessionStore) SetLastSuggestions(chatID int64, list []RecommendationMatch) {
	st.With(chatID, func(s *Session) { s.AI.SetSuggestions(list) })
}

// TakeLastFeedback oxirgi feedback yozuvini o'qib, o'chiradi
func (st *SessionStore) TakeLastFeedback(chatID int64) (PendingFeedback, bool) {
	var (
		fb PendingFeedback
		ok bool
	)
	st.With(chatID, func(s *Session) { fb, ok = s.AI.TakeLastFeedback() })
	return fb, ok
}

// Counts sessiyalar soni holatlar bo'yicha
func (st *SessionStore) Counts() map[string]int {
	st.mu.RLock()
	slots := make([]*sessionSlot, 0, len(st.slots))
	for _, sl := range st.slots {
		slots = append(slots, sl)
	}
	st.mu.RUnlock()

	out := make(map[string]int)
	for _, sl := range slots {
		sl.mu.Lock()
		out[sl.session.State().String()]++
		sl.mu.Unlock()
	}
	return out
}
