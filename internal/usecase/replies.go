package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// ReplyKind chiquvchi javob turi
type ReplyKind int

const (
	// ReplyText oddiy matn (EditMessageID > 0 bo'lsa shu xabarni tahrirlash)
	ReplyText ReplyKind = iota
	// ReplyCard mashina kartasi: rasm + caption (rasm bo'lmasa matn)
	ReplyCard
	// ReplyLoading "⏳ loading..." vaqtinchalik xabar
	ReplyLoading
	// ReplyFinal loading xabarini yakuniy matn bilan almashtirish
	ReplyFinal
	// ReplyDropLoading loading xabarini o'chirish
	ReplyDropLoading
	// ReplyClearHelp oldingi yordam javoblarini o'chirish
	ReplyClearHelp
	// ReplyNotice callback uchun qisqa ogohlantirish
	ReplyNotice
)

// Option tanlanadigan tugma va uning callback tokeni
type Option struct {
	Label string
	Token string
}

// Reply transportga bog'liq bo'lmagan chiquvchi hodisa
type Reply struct {
	Kind          ReplyKind
	Text          string
	Markdown      bool
	Car           *entity.Car
	Options       [][]Option
	EditMessageID int
	Ephemeral     bool
	CallbackID    string
}

// Responder delivers replies for one chat in order. Delivery failures are handled (and logged) by the implementation.
type Responder interface {
	Respond(ctx context.Context, chatID int64, replies ...Reply)
}

// Callback tokenlari
const (
	TokenDiscounted  = "discounted"
	TokenFilter      = "filter"
	TokenSearchName  = "search_name"
	TokenSearchPrice = "search_price"
	TokenHelpMenu    = "help_menu"
	TokenMainMenu    = "main_menu"
	TokenAskAI       = "ask_ai"

	tokenHelpCategoryPrefix = "help_cat|"
	tokenHelpQuestionPrefix = "help_q|"
	tokenFeedbackPrefix     = "feedback|"

	TokenFeedbackLike    = tokenFeedbackPrefix + "like"
	TokenFeedbackDislike = tokenFeedbackPrefix + "dislike"
)

// Categories asosiy menyudagi kategoriyalar
var Categories = []string{"Легковой", "Кроссовер", "Грузовой", "Электромобили", "Гибриды"}

func isCategory(token string) bool {
	for _, c := range Categories {
		if c == token {
			return true
		}
	}
	return false
}

// Javob matnlari
const (
	textLoading        = "⏳ loading..."
	textAskName        = "👋 Привет! Как тебя зовут?"
	textAskAge         = "📅 Сколько тебе лет?"
	textAskCity        = "🏙️ Из какого ты города?"
	textChooseSection  = "Выбери раздел:"
	textNextAction     = "Выбери следующее действие:"
	textOtherCategory  = "Выбери другую категорию:"
	textBackToMenu     = "Возвращаю тебя в главное меню 👇"
	textAskBrand       = "🏷️ Укажи марку (или напиши 'пропустить'):"
	textAskModel       = "✏️ Укажи модель (или напиши 'пропустить'):"
	textAskCarName     = "✏️ Введите название (например: Camry 50):"
	textAskPrice       = "💰 Введите примерную цену (например: 12000000):"
	textPriceInvalid   = "❗ Введите число (например: 12000000)"
	textFilterResults  = "🎯 Результаты фильтра:"
	textFilterEmpty    = "😔 Машины по заданным параметрам не найдены."
	textSearchResults  = "🔍 Результаты поиска:"
	textSearchEmpty    = "😔 Машина не найдена."
	textPriceEmpty     = "😔 Ничего не найдено."
	textDiscountEmpty  = "😔 Сейчас нет выгодных предложений."
	textDiscountHeader = "🔥 *Выгодные предложения:*\n\nВыбери новую категорию ниже:"
	textHelpMenu       = "📘 Помощь при покупке машины. Выбери категорию:"
	textAIWelcome      = "🤖 Привет! Расскажи, что тебе важно: бюджет, тип кузова, топливо, назначение. " +
		"Если вопрос уже есть в разделе помощи, отвечу из базы знаний, иначе подберу варианты и смогу показать фото. " +
		"Напиши 'стоп', чтобы вернуться в меню."
	textFeedbackAsk   = "Понравился наш ответ?"
	textFeedbackThx   = "Спасибо за отзыв! 🙌"
	textAskMore       = "Можешь задать ещё вопрос или напиши 'стоп', чтобы вернуться в меню."
	textAskMoreShort  = "Хорошо! Можешь задать ещё вопрос или написать 'стоп'."
	textConfirmPhotos = "Отправить фотографии этих машин? (да/нет)"
	textConfirmAgain  = "Пожалуйста, ответь 'да' или 'нет'."
	textPhotosDone    = "Готово! Делюсь вариантами 👇"
	textPhotosNone    = "Пока нечего показать, но я готов помочь с другими вариантами."
	textStillThinking = "⏳ Я ещё думаю над прошлым вопросом. Подожди немного или напиши 'стоп'."
	textStoreError    = "⚠️ Не удалось получить данные. Попробуй ещё раз позже."
	textUnsupported   = "Действие не поддерживается"
	textNoCategory    = "Категория недоступна"
	textNoQuestion    = "Вопрос недоступен"
)

const textFinishOnboarding = "Сначала давай познакомимся 🙂"

// MainMenu asosiy menyu tugmalari
func MainMenu() [][]Option {
	return [][]Option{
		{{"🚗 Легковой", "Легковой"}, {"🚙 Кроссовер", "Кроссовер"}},
		{{"🚚 Грузовой", "Грузовой"}, {"⚡ Электромобили", "Электромобили"}},
		{{"♻️ Гибриды", "Гибриды"}, {"🔥 Выгодные предложения", TokenDiscounted}},
		{{"🎯 Фильтр", TokenFilter}, {"🔎 Искать по названию", TokenSearchName}},
		{{"💰 Искать по цене", TokenSearchPrice}},
		{{"❓ Помощь при покупке", TokenHelpMenu}},
		{{"🤖 Спросить совет у AI", TokenAskAI}},
	}
}

func feedbackMenu() [][]Option {
	return [][]Option{{{"Да 👍", TokenFeedbackLike}, {"Нет 👎", TokenFeedbackDislike}}}
}

func helpSectionsMenu(sections []entity.HelpSection) [][]Option {
	var rows [][]Option
	var row []Option
	for _, s := range sections {
		row = append(row, Option{Label: s.Button, Token: tokenHelpCategoryPrefix + s.Key})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, []Option{{"⬅️ Главное меню", TokenMainMenu}})
}

func helpQuestionsMenu(section entity.HelpSection) [][]Option {
	var rows [][]Option
	var row []Option
	for i := range section.Questions {
		row = append(row, Option{
			Label: strconv.Itoa(i + 1),
			Token: fmt.Sprintf("%s%s|%d", tokenHelpQuestionPrefix, section.Key, i),
		})
		if len(row) == 5 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, []Option{{"⬅️ Категории", TokenHelpMenu}})
}

func formatHelpQuestions(section entity.HelpSection) string {
	lines := []string{section.Label, "", "Выбери вопрос по номеру или задай его текстом:"}
	for i, q := range section.Questions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, q.Question))
	}
	return strings.Join(lines, "\n")
}

// CardCaption mashina kartasi uchun Markdown caption
func CardCaption(car entity.Car, hot bool) string {
	prefix := ""
	if hot {
		prefix = "🔥 "
	}
	return fmt.Sprintf("%s*%s* — %s\n_%s_\n\n⚙️ *Характеристики:* %s",
		prefix, car.FullName(), car.Price, car.Description, car.Specs)
}

// formatAmount 12000000 -> "12 000 000"
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func plain(s string) Reply { return Reply{Kind: ReplyText, Text: s} }

func menu(s string) Reply { return Reply{Kind: ReplyText, Text: s, Options: MainMenu()} }

func final(s string) Reply { return Reply{Kind: ReplyFinal, Text: s} }

func loading() Reply { return Reply{Kind: ReplyLoading, Text: textLoading} }

func edit(messageID int, s string, options [][]Option) Reply {
	return Reply{Kind: ReplyText, Text: s, Options: options, EditMessageID: messageID}
}

func notice(callbackID, s string) Reply {
	return Reply{Kind: ReplyNotice, Text: s, CallbackID: callbackID}
}

func cardReplies(cars []entity.Car, hot bool) []Reply {
	out := make([]Reply, 0, len(cars))
	for i := range cars {
		car := cars[i]
		out = append(out, Reply{Kind: ReplyCard, Text: CardCaption(car, hot), Markdown: true, Car: &car})
	}
	return out
}
