package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"go.uber.org/zap"
)

// Event kiruvchi hodisa: matn yoki tugma bosilishi
type Event struct {
	ChatID     int64
	Text       string
	Token      string // callback data
	MessageID  int    // tugma biriktirilgan xabar
	CallbackID string
}

// AuditSink receives one record per AI turn. Record must not block the caller.
type AuditSink interface {
	Record(dialog entity.AIDialog)
}

// Stats ops endpoint uchun statistika
type Stats struct {
	Sessions map[string]int `json:"sessions"`
	InFlight int64          `json:"ai_in_flight"`
}

// ConversationUseCase suhbat mexanizmi (holatlar mashinasi)
type ConversationUseCase interface {
	Start(ctx context.Context, ev Event, out Responder)
	HandleText(ctx context.Context, ev Event, out Responder)
	HandleCallback(ctx context.Context, ev Event, out Responder)
	Session(chatID int64) SessionView
	Stats() Stats
	// Wait blocks until in-flight AI turns finish or ctx is done.
	Wait(ctx context.Context) error
}

type conversationUseCase struct {
	sessions *SessionStore
	catalog  repository.CatalogRepository
	help     repository.HelpRepository
	users    repository.UserRepository
	dialogs  repository.DialogRepository
	invoker  *AIInvoker
	audit    AuditSink
	log      *zap.Logger

	inflight  sync.WaitGroup
	inflightN atomic.Int64
}

// aiTurn bitta AI so'rovi (worker goroutine ga uzatiladi)
type aiTurn struct {
	id       string
	chatID   int64
	userID   int64
	gen      uint64
	question string
	prompt   string
	catalog  []entity.Car
}

var newRequestID = func() string { return uuid.NewString() }

// NewConversationUseCase yangi ConversationUseCase yaratish
func NewConversationUseCase(
	sessions *SessionStore,
	catalog repository.CatalogRepository,
	help repository.HelpRepository,
	users repository.UserRepository,
	dialogs repository.DialogRepository,
	invoker *AIInvoker,
	audit AuditSink,
	log *zap.Logger,
) ConversationUseCase {
	if sessions == nil {
		sessions = NewSessionStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &conversationUseCase{
		sessions: sessions,
		catalog:  catalog,
		help:     help,
		users:    users,
		dialogs:  dialogs,
		invoker:  invoker,
		audit:    audit,
		log:      log,
	}
}

// Start /start komandasi
func (u *conversationUseCase) Start(ctx context.Context, ev Event, out Responder) {
	u.sessions.With(ev.ChatID, func(s *Session) {
		replies := []Reply{{Kind: ReplyClearHelp}}
		replies = append(replies, u.leave(s, idleFlow{})...)

		p, err := u.users.LoadProfile(ctx, ev.ChatID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			u.log.Warn("profile lookup failed", zap.Int64("chat_id", ev.ChatID), zap.Error(err))
		}
		if err == nil {
			s.Profile = p
		}
		s.profileChecked = err == nil || errors.Is(err, repository.ErrNotFound)

		// profil o'qilmadi: qayta onboarding qilmaymiz, keyingi hodisada yana urinamiz
		if s.Profile == nil && !s.profileChecked {
			out.Respond(ctx, ev.ChatID, append(replies, menu(textStoreError))...)
			return
		}
		if s.Profile == nil {
			s.flow = askNameFlow{}
			out.Respond(ctx, ev.ChatID, append(replies, plain(textAskName))...)
			return
		}

		greet := "Рад снова тебя видеть, " + s.Profile.Name
		if s.Profile.City != "" {
			greet += " из " + s.Profile.City
		}
		out.Respond(ctx, ev.ChatID, append(replies, menu(greet+"! 🚘 Выбери категорию:"))...)
	})
}

// HandleText foydalanuvchi matnini joriy holat bo'yicha qayta ishlash
func (u *conversationUseCase) HandleText(ctx context.Context, ev Event, out Responder) {
	var turn *aiTurn
	u.sessions.With(ev.ChatID, func(s *Session) {
		u.ensureProfile(ctx, s)
		from := s.State()

		replies, t, err := u.onText(ctx, s, strings.TrimSpace(ev.Text))
		if err != nil {
			u.log.Warn("catalog query failed",
				zap.Int64("chat_id", ev.ChatID), zap.Stringer("state", from), zap.Error(err))
			replies = append(replies, final(textStoreError), menu(textNextAction))
		}
		u.log.Debug("text handled",
			zap.Int64("chat_id", ev.ChatID), zap.Stringer("from", from), zap.Stringer("to", s.State()))

		out.Respond(ctx, ev.ChatID, replies...)
		turn = t
	})
	if turn != nil {
		u.launch(ctx, turn, out)
	}
}

func (u *conversationUseCase) onText(ctx context.Context, s *Session, in string) ([]Reply, *aiTurn, error) {
	if !s.State().isOnboarding() && isCancel(in) {
		return u.cancel(s), nil, nil
	}

	switch f := s.flow.(type) {
	case askNameFlow:
		if in == "" {
			return []Reply{plain(textAskName)}, nil, nil
		}
		s.flow = askAgeFlow{name: in}
		return []Reply{plain(textAskAge)}, nil, nil

	case askAgeFlow:
		s.flow = askCityFlow{name: f.name, age: parseAge(in)}
		return []Reply{plain(textAskCity)}, nil, nil

	case askCityFlow:
		if in == "" {
			return []Reply{plain(textAskCity)}, nil, nil
		}
		return u.completeOnboarding(ctx, s, f, in), nil, nil

	case filterBrandFlow:
		s.flow = filterModelFlow{brand: filterValue(in)}
		return []Reply{plain(textAskModel)}, nil, nil

	case filterModelFlow:
		s.flow = idleFlow{}
		replies := []Reply{loading()}
		cars, err := u.catalog.ByFilters(ctx, f.brand, filterValue(in))
		if err != nil {
			return replies, nil, fmt.Errorf("filter cars: %w", err)
		}
		return append(replies, results(cars, textFilterResults, textFilterEmpty)...), nil, nil

	case searchByNameFlow:
		if in == "" {
			return []Reply{plain(textAskCarName)}, nil, nil
		}
		s.flow = idleFlow{}
		replies := []Reply{loading()}
		cars, err := u.catalog.ByNameSubstring(ctx, in)
		if err != nil {
			return replies, nil, fmt.Errorf("search cars by name: %w", err)
		}
		return append(replies, results(cars, textSearchResults, textSearchEmpty)...), nil, nil

	case searchByPriceFlow:
		price, ok := firstNumber(in)
		if !ok {
			return []Reply{plain(textPriceInvalid)}, nil, nil
		}
		s.flow = idleFlow{}
		replies := []Reply{loading()}
		cars, err := u.catalog.ByPriceBand(ctx, price, constants.PriceBandWidth)
		if err != nil {
			return replies, nil, fmt.Errorf("search cars by price: %w", err)
		}
		header := fmt.Sprintf("💰 Машины около %s ₸:", formatAmount(price))
		return append(replies, results(cars, header, textPriceEmpty)...), nil, nil

	case askAIFlow:
		replies, turn := u.ask(ctx, s, in)
		return replies, turn, nil

	case askAIConfirmFlow:
		return u.confirm(s, in), nil, nil
	}

	return []Reply{menu(textChooseSection)}, nil, nil
}

func (u *conversationUseCase) completeOnboarding(ctx context.Context, s *Session, f askCityFlow, city string) []Reply {
	p := &entity.Profile{ChatID: s.ChatID, Name: f.name, Age: f.age, City: city}
	if s.Profile != nil {
		p.ID = s.Profile.ID
	}
	id, err := u.users.SaveProfile(ctx, *p)
	if err != nil {
		u.log.Warn("profile save failed", zap.Int64("chat_id", s.ChatID), zap.Error(err))
	} else {
		p.ID = id
	}
	s.Profile = p
	s.profileChecked = true
	s.flow = idleFlow{}
	return []Reply{menu(fmt.Sprintf("Отлично, %s! 🚘 Выбери категорию:", p.Name))}
}

// cancel any flow -> Idle, draft va AI konteksti tozalanadi
func (u *conversationUseCase) cancel(s *Session) []Reply {
	replies := []Reply{{Kind: ReplyClearHelp}}
	replies = append(replies, u.leave(s, idleFlow{})...)
	s.AI.Reset()
	return append(replies, menu(textBackToMenu))
}

// leave switches flow and removes the loading placeholder of an abandoned AI turn.
func (u *conversationUseCase) leave(s *Session, next flow) []Reply {
	var replies []Reply
	if s.pending {
		u.log.Info("AI turn abandoned", zap.Int64("chat_id", s.ChatID), zap.Uint64("turn", s.turn))
		replies = append(replies, Reply{Kind: ReplyDropLoading})
	}
	s.leaveTo(next)
	return replies
}

// ask AI rejimidagi savol: avval tayyor javob, bo'lmasa AI turn
func (u *conversationUseCase) ask(ctx context.Context, s *Session, question string) ([]Reply, *aiTurn) {
	if s.pending {
		return []Reply{plain(textStillThinking)}, nil
	}
	if question == "" {
		return []Reply{plain(textAskMore)}, nil
	}

	s.AI.Append(RoleUser, question)
	replies := []Reply{{Kind: ReplyClearHelp}}

	canned, err := u.help.Find(ctx, question)
	if err != nil {
		u.log.Warn("canned answer lookup failed", zap.Int64("chat_id", s.ChatID), zap.Error(err))
	}
	if canned != nil {
		s.AI.Append(RoleAssistant, canned.Answer)
		s.AI.SetSuggestions(nil)
		s.AI.SetLastFeedback(question, canned.Answer)
		return append(replies, plain(canned.Answer), feedbackPrompt(), plain(textAskMore)), nil
	}

	catalog, err := u.catalog.All(ctx)
	if err != nil {
		u.log.Warn("catalog snapshot failed, prompting without catalog", zap.Int64("chat_id", s.ChatID), zap.Error(err))
		catalog = nil
	}

	prompt := BuildPrompt(PromptInput{
		Question: question,
		Profile:  s.Profile,
		History:  s.AI.History(),
		Catalog:  catalog,
	})

	s.turn++
	s.pending = true
	turn := &aiTurn{
		id:       newRequestID(),
		chatID:   s.ChatID,
		gen:      s.turn,
		question: question,
		prompt:   prompt,
		catalog:  catalog,
	}
	if s.Profile.Persisted() {
		turn.userID = s.Profile.ID
	}
	return append(replies, loading()), turn
}

// launch runs the AI call off the chat's processing path.
func (u *conversationUseCase) launch(ctx context.Context, t *aiTurn, out Responder) {
	ctx = context.WithoutCancel(ctx)
	u.inflight.Add(1)
	u.inflightN.Add(1)
	go func() {
		defer u.inflight.Done()
		defer u.inflightN.Add(-1)

		u.log.Info("AI turn started", zap.String("request_id", t.id), zap.Int64("chat_id", t.chatID))
		outcome := u.invoker.Invoke(ctx, t.prompt)
		u.completeTurn(ctx, t, outcome, out)
	}()
}

// completeTurn applies the AI result if the chat is still waiting for this turn; otherwise it is dropped.
func (u *conversationUseCase) completeTurn(ctx context.Context, t *aiTurn, outcome AIOutcome, out Responder) {
	dialog := entity.AIDialog{
		ID:        t.id,
		ChatID:    t.chatID,
		UserID:    t.userID,
		Question:  t.question,
		Answer:    outcome.Text,
		Prompt:    t.prompt,
		Status:    outcome.Status,
		CreatedAt: time.Now(),
	}
	if outcome.Err != nil {
		dialog.Error = outcome.Err.Error()
	}
	if u.audit != nil {
		u.audit.Record(dialog)
	}

	u.sessions.With(t.chatID, func(s *Session) {
		if !s.pending || s.turn != t.gen || s.State() != StateAskAI {
			u.log.Info("stale AI result discarded",
				zap.String("request_id", t.id), zap.Int64("chat_id", t.chatID),
				zap.String("status", outcome.Status), zap.Stringer("state", s.State()))
			return
		}
		s.pending = false

		s.AI.Append(RoleAssistant, outcome.Text)
		matches := ExtractRecommendations(outcome.Text, t.catalog)
		s.AI.SetSuggestions(matches)
		s.AI.SetLastFeedback(t.question, outcome.Text)

		replies := []Reply{final(outcome.Text), feedbackPrompt()}
		if len(matches) > 0 {
			s.flow = askAIConfirmFlow{}
			replies = append(replies, plain(textConfirmPhotos))
		} else {
			replies = append(replies, plain(textAskMore))
		}
		u.log.Info("AI turn finished",
			zap.String("request_id", t.id), zap.Int64("chat_id", t.chatID),
			zap.String("status", outcome.Status), zap.Int("suggestions", len(matches)),
			zap.Duration("elapsed", outcome.Elapsed))
		out.Respond(ctx, t.chatID, replies...)
	})
}

// confirm "да/нет" javobi: rasmlarni yuborish yoki bekor qilish
func (u *conversationUseCase) confirm(s *Session, in string) []Reply {
	switch {
	case isYes(in):
		suggestions := s.AI.Suggestions()
		s.AI.SetSuggestions(nil)
		s.flow = askAIFlow{}
		if len(suggestions) == 0 {
			return []Reply{plain(textPhotosNone), plain(textAskMore)}
		}
		cars := make([]entity.Car, 0, len(suggestions))
		for _, m := range suggestions {
			cars = append(cars, m.Car)
		}
		replies := []Reply{loading()}
		replies = append(replies, cardReplies(cars, false)...)
		return append(replies, final(textPhotosDone), plain(textAskMore))

	case isNo(in):
		s.AI.SetSuggestions(nil)
		s.flow = askAIFlow{}
		return []Reply{plain(textAskMoreShort)}
	}
	return []Reply{plain(textConfirmAgain)}
}

// HandleCallback menyu tugmalari
func (u *conversationUseCase) HandleCallback(ctx context.Context, ev Event, out Responder) {
	u.sessions.With(ev.ChatID, func(s *Session) {
		u.ensureProfile(ctx, s)
		from := s.State()

		replies, err := u.onCallback(ctx, s, ev)
		if err != nil {
			u.log.Warn("callback query failed",
				zap.Int64("chat_id", ev.ChatID), zap.String("token", ev.Token), zap.Error(err))
			replies = append(replies, menu(textStoreError))
		}
		u.log.Debug("callback handled",
			zap.Int64("chat_id", ev.ChatID), zap.String("token", ev.Token),
			zap.Stringer("from", from), zap.Stringer("to", s.State()))
		out.Respond(ctx, ev.ChatID, replies...)
	})
}

func (u *conversationUseCase) onCallback(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	token := ev.Token
	if strings.HasPrefix(token, tokenFeedbackPrefix) {
		return u.feedback(ctx, s, ev), nil
	}

	// menyu tugmalari onboarding tugamaguncha ishlamaydi
	if s.State().isOnboarding() {
		return []Reply{notice(ev.CallbackID, textFinishOnboarding), plain(onboardingPrompt(s.flow))}, nil
	}

	replies := []Reply{{Kind: ReplyClearHelp}}
	msgID := ev.MessageID

	switch {
	case isCategory(token):
		replies = append(replies, u.leave(s, idleFlow{})...)
		cars, err := u.catalog.ByCategory(ctx, token)
		if err != nil {
			return replies, fmt.Errorf("cars by category %q: %w", token, err)
		}
		if len(cars) == 0 {
			return append(replies, edit(msgID, "🚫 Нет данных по категории: "+token, MainMenu())), nil
		}
		header := edit(msgID, fmt.Sprintf("🚘 Категория *%s*:\n\nВыбери другую категорию ниже:", token), MainMenu())
		header.Markdown = true
		replies = append(replies, header)
		replies = append(replies, cardReplies(cars, false)...)
		return append(replies, menu(textOtherCategory)), nil

	case token == TokenDiscounted:
		replies = append(replies, u.leave(s, idleFlow{})...)
		cars, err := u.catalog.Discounted(ctx)
		if err != nil {
			return replies, fmt.Errorf("discounted cars: %w", err)
		}
		if len(cars) == 0 {
			return append(replies, edit(msgID, textDiscountEmpty, MainMenu())), nil
		}
		header := edit(msgID, textDiscountHeader, MainMenu())
		header.Markdown = true
		replies = append(replies, header)
		replies = append(replies, cardReplies(cars, true)...)
		return append(replies, menu(textOtherCategory)), nil

	case token == TokenFilter:
		replies = append(replies, u.leave(s, filterBrandFlow{})...)
		return append(replies, edit(msgID, textAskBrand, nil)), nil

	case token == TokenSearchName:
		replies = append(replies, u.leave(s, searchByNameFlow{})...)
		return append(replies, edit(msgID, textAskCarName, nil)), nil

	case token == TokenSearchPrice:
		replies = append(replies, u.leave(s, searchByPriceFlow{})...)
		return append(replies, edit(msgID, textAskPrice, nil)), nil

	case token == TokenMainMenu:
		replies = append(replies, u.leave(s, idleFlow{})...)
		return append(replies, edit(msgID, textChooseSection, MainMenu())), nil

	case token == TokenHelpMenu:
		replies = append(replies, u.leave(s, idleFlow{})...)
		sections, err := u.help.Sections(ctx)
		if err != nil {
			return replies, fmt.Errorf("help sections: %w", err)
		}
		return append(replies, edit(msgID, textHelpMenu, helpSectionsMenu(sections))), nil

	case strings.HasPrefix(token, tokenHelpCategoryPrefix):
		replies = append(replies, u.leave(s, idleFlow{})...)
		key := strings.TrimPrefix(token, tokenHelpCategoryPrefix)
		section, err := u.help.SectionByKey(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return append(replies, notice(ev.CallbackID, textNoCategory)), nil
		}
		if err != nil {
			return replies, fmt.Errorf("help section %q: %w", key, err)
		}
		return append(replies, edit(msgID, formatHelpQuestions(*section), helpQuestionsMenu(*section))), nil

	case strings.HasPrefix(token, tokenHelpQuestionPrefix):
		replies = append(replies, u.leave(s, idleFlow{})...)
		parts := strings.Split(token, "|")
		if len(parts) != 3 {
			return append(replies, notice(ev.CallbackID, textNoQuestion)), nil
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil {
			return append(replies, notice(ev.CallbackID, "Некорректный номер вопроса")), nil
		}
		section, err := u.help.SectionByKey(ctx, parts[1])
		if errors.Is(err, repository.ErrNotFound) {
			return append(replies, notice(ev.CallbackID, textNoCategory)), nil
		}
		if err != nil {
			return replies, fmt.Errorf("help section %q: %w", parts[1], err)
		}
		if idx < 0 || idx >= len(section.Questions) {
			return append(replies, notice(ev.CallbackID, textNoQuestion)), nil
		}
		q := section.Questions[idx]
		return append(replies, Reply{Kind: ReplyText, Text: q.Question + "\n\n" + q.Answer, Ephemeral: true}), nil

	case token == TokenAskAI:
		if s.pending {
			replies = append(replies, Reply{Kind: ReplyDropLoading})
		}
		s.enterAI()
		return append(replies, edit(msgID, textAIWelcome, nil)), nil
	}

	u.log.Warn("unknown callback", zap.Int64("chat_id", s.ChatID), zap.String("token", token))
	return []Reply{notice(ev.CallbackID, textUnsupported)}, nil
}

// feedback like/dislike: oxirgi javobni bir marta saqlaydi, holat o'zgarmaydi
func (u *conversationUseCase) feedback(ctx context.Context, s *Session, ev Event) []Reply {
	thanks := []Reply{edit(ev.MessageID, textFeedbackThx, nil)}

	action := strings.TrimPrefix(ev.Token, tokenFeedbackPrefix)
	if action != "like" && action != "dislike" {
		u.log.Warn("unknown feedback action", zap.String("token", ev.Token))
		return thanks
	}
	fb, ok := s.AI.TakeLastFeedback()
	if !ok {
		return thanks
	}
	if !s.Profile.Persisted() {
		return thanks
	}
	err := u.dialogs.SaveFeedback(ctx, entity.Feedback{
		Question: fb.Question,
		Answer:   fb.Answer,
		UserID:   s.Profile.ID,
		Liked:    action == "like",
	})
	if err != nil {
		u.log.Warn("feedback save failed", zap.Int64("chat_id", s.ChatID), zap.Error(err))
	}
	return thanks
}

// ensureProfile profilni bir marta bazadan yuklab keshlaydi
func (u *conversationUseCase) ensureProfile(ctx context.Context, s *Session) {
	if s.Profile != nil || s.profileChecked {
		return
	}
	p, err := u.users.LoadProfile(ctx, s.ChatID)
	switch {
	case err == nil:
		s.Profile = p
		s.profileChecked = true
	case errors.Is(err, repository.ErrNotFound):
		s.profileChecked = true
	default:
		u.log.Warn("profile lookup failed", zap.Int64("chat_id", s.ChatID), zap.Error(err))
	}
}

func (u *conversationUseCase) Session(chatID int64) SessionView {
	return u.sessions.GetOrCreate(chatID)
}

func (u *conversationUseCase) Stats() Stats {
	return Stats{Sessions: u.sessions.Counts(), InFlight: u.inflightN.Load()}
}

func (u *conversationUseCase) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onboardingPrompt joriy onboarding qadamining savoli
func onboardingPrompt(f flow) string {
	switch f.(type) {
	case askAgeFlow:
		return textAskAge
	case askCityFlow:
		return textAskCity
	}
	return textAskName
}

func feedbackPrompt() Reply {
	return Reply{Kind: ReplyText, Text: textFeedbackAsk, Options: feedbackMenu()}
}

// results kartalar ro'yxati yoki bo'sh natija xabari, oxirida menyu
func results(cars []entity.Car, header, empty string) []Reply {
	if len(cars) == 0 {
		return []Reply{final(empty), menu(textNextAction)}
	}
	replies := []Reply{final(header)}
	replies = append(replies, cardReplies(cars, false)...)
	return append(replies, menu(textNextAction))
}

// parseAge matndagi birinchi son (0 = noma'lum)
func parseAge(in string) int {
	v, ok := firstNumber(in)
	if !ok || v <= 0 || v > 120 {
		return 0
	}
	return int(v)
}
