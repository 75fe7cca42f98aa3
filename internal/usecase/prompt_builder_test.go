package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

func TestBuildPromptSectionsInOrder(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Question: "Что взять для семьи?",
		Profile:  &entity.Profile{Name: "Айдар", Age: 30, City: "Алматы"},
		History: []HistoryEntry{
			{Role: RoleUser, Text: "Привет"},
			{Role: RoleAssistant, Text: "Здравствуйте!"},
		},
		Catalog: testCatalog(),
	})

	order := []string{
		"Пользователь: Айдар, 30 лет, город Алматы",
		"История диалога:",
		"Пользователь: Привет",
		"Бот: Здравствуйте!",
		"Доступные автомобили (до 3 моделей в категории):",
		"Легковой:",
		"- Toyota Camry 50 — 12 000 000 ₸ (2.5 л)",
		"Кроссовер:",
		"Грузовой:",
		"Задача:",
		"Вопрос пользователя: Что взять для семьи?",
		"не больше 2-3 предложений",
		"Рекомендую: <модель1>, <модель2>",
		"Рекомендую: нет данных",
	}
	pos := 0
	for _, part := range order {
		idx := strings.Index(prompt[pos:], part)
		if !assert.GreaterOrEqual(t, idx, 0, "missing or out of order: %q", part) {
			return
		}
		pos += idx + len(part)
	}
}

func TestBuildPromptUnknownUser(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Question: "?"})
	assert.True(t, strings.HasPrefix(prompt, "Пользователь: данные не указаны, обращение первое."))
	assert.NotContains(t, prompt, "История диалога:")
}

func TestBuildPromptPartialProfile(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Question: "?", Profile: &entity.Profile{Name: "Оля"}})
	assert.True(t, strings.HasPrefix(prompt, "Пользователь: Оля\n"))
}

func TestBuildPromptCategoryLimit(t *testing.T) {
	var catalog []entity.Car
	for _, model := range []string{"A1", "A2", "A3", "A4", "A5"} {
		catalog = append(catalog, entity.Car{Category: "Легковой", Brand: "Audi", Model: model, Price: "1 ₸", Specs: "-"})
	}
	prompt := BuildPrompt(PromptInput{Question: "?", Catalog: catalog})
	assert.Contains(t, prompt, "Audi A3")
	assert.NotContains(t, prompt, "Audi A4")
	assert.Equal(t, 1, strings.Count(prompt, "Легковой:"))
}
