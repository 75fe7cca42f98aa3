package usecase

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBound(t *testing.T) {
	store := NewSessionStore()
	for i := 1; i <= 11; i++ {
		store.AppendHistory(1, RoleUser, fmt.Sprintf("msg %d", i))
	}

	history := store.GetOrCreate(1).History
	require.Len(t, history, 10)
	assert.Equal(t, "msg 2", history[0].Text)
	assert.Equal(t, "msg 11", history[9].Text)
	for i, h := range history {
		assert.Equal(t, fmt.Sprintf("msg %d", i+2), h.Text)
	}
}

func TestResetAIContext(t *testing.T) {
	store := NewSessionStore()
	store.AppendHistory(7, RoleUser, "привет")
	store.SetLastSuggestions(7, []RecommendationMatch{{Car: testCatalog()[0], Token: "Camry"}})
	store.With(7, func(s *Session) { s.AI.SetLastFeedback("q", "a") })

	store.ResetAIContext(7)

	v := store.GetOrCreate(7)
	assert.Empty(t, v.History)
	assert.Empty(t, v.Suggestions)
	assert.Nil(t, v.LastFeedback)
}

func TestSuggestionsBound(t *testing.T) {
	store := NewSessionStore()
	var list []RecommendationMatch
	for _, car := range testCatalog() {
		list = append(list, RecommendationMatch{Car: car})
	}
	store.SetLastSuggestions(3, list)
	assert.Len(t, store.GetOrCreate(3).Suggestions, 5)
}

func TestTakeLastFeedback(t *testing.T) {
	store := NewSessionStore()
	_, ok := store.TakeLastFeedback(5)
	assert.False(t, ok)

	store.With(5, func(s *Session) { s.AI.SetLastFeedback("вопрос", "ответ") })

	fb, ok := store.TakeLastFeedback(5)
	require.True(t, ok)
	assert.Equal(t, PendingFeedback{Question: "вопрос", Answer: "ответ"}, fb)

	_, ok = store.TakeLastFeedback(5)
	assert.False(t, ok, "second take must see an empty slot")
}

func TestNewSessionIsIdle(t *testing.T) {
	v := NewSessionStore().GetOrCreate(42)
	assert.Equal(t, StateIdle, v.State)
	assert.False(t, v.HasDraft)
	assert.Nil(t, v.Profile)
}

func TestLeaveAIFlowInvalidatesTurn(t *testing.T) {
	s := newSession(1)
	s.enterAI()
	s.AI.Append(RoleUser, "вопрос")
	s.turn++
	s.pending = true
	turn := s.turn

	s.leaveTo(idleFlow{})

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.pending)
	assert.NotEqual(t, turn, s.turn)
	assert.Empty(t, s.AI.History())
}

// Bitta chat uchun parallel yozuvlar yo'qolmasligi kerak
func TestSessionStoreConcurrency(t *testing.T) {
	store := NewSessionStore()
	var wg sync.WaitGroup
	for chat := int64(0); chat < 20; chat++ {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(chatID int64) {
				defer wg.Done()
				store.With(chatID, func(s *Session) { s.turn++ })
			}(chat)
		}
	}
	wg.Wait()

	for chat := int64(0); chat < 20; chat++ {
		store.With(chat, func(s *Session) {
			assert.Equal(t, uint64(50), s.turn, "chat %d", chat)
		})
	}
	assert.Equal(t, 20, store.Counts()[StateIdle.String()])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ask_ai_confirm", StateAskAIConfirm.String())
	assert.Equal(t, "unknown", State(99).String())
}
