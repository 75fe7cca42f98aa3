package constants

import "time"

// Suhbat konteksti konstantalari
const (
	// MaxHistoryEntries AI suhbat tarixida saqlanadigan max yozuvlar soni
	MaxHistoryEntries = 10

	// MaxSuggestions AI javobidan olinadigan max tavsiyalar soni
	MaxSuggestions = 5

	// PromptCarsPerCategory promptda har bir kategoriyadan ko'rsatiladigan max mashinalar
	PromptCarsPerCategory = 3

	// PriceBandWidth narx bo'yicha qidiruvda markazdan +/- oraliq
	PriceBandWidth = 2_000_000
)

// AI Model konstantalari
const (
	// DefaultAITimeout AI javobini kutish uchun qat'iy vaqt chegarasi
	DefaultAITimeout = 60 * time.Second

	// GeminiModelName Gemini AI model nomi
	GeminiModelName = "gemini-2.5-flash"

	// AITemperature AI javob aniqlik darajasi (0.0-1.0)
	AITemperature = 0.3

	// AITopK Top-K sampling parametri
	AITopK = 20

	// AITopP Top-P sampling parametri
	AITopP = 0.9

	// MaxRetries AI ga so'rov yuborish uchun max urinishlar
	MaxRetries = 2

	// RetryDelay har bir urinish o'rtasidagi kutish vaqti
	RetryDelay = 3 * time.Second
)

// AI turn natijalari (audit yozuvi uchun)
const (
	AIStatusOK      = "ok"
	AIStatusTimeout = "timeout"
	AIStatusError   = "error"
)

// Foydalanuvchiga ko'rsatiladigan zaxira javoblar
const (
	AITimeoutMessage = "AI долго думает. Попробуй задать вопрос ещё раз чуть позже."
	AIErrorMessage   = "Не удалось получить ответ от ИИ. Попробуй ещё раз позже."
)

// RecommendationMarker AI javobidagi tavsiyalar qatori belgisi
const RecommendationMarker = "Рекомендую:"
