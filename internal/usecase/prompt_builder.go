package usecase

import (
	"fmt"
	"strings"

	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// PromptInput AI prompti uchun kirish ma'lumotlari
type PromptInput struct {
	Question string
	Profile  *entity.Profile
	History  []HistoryEntry
	Catalog  []entity.Car
}

// BuildPrompt assembles the model prompt: profile, transcript, catalog digest, task, question, output contract.
func BuildPrompt(in PromptInput) string {
	var lines []string

	lines = append(lines, profileLine(in.Profile))

	if len(in.History) > 0 {
		lines = append(lines, "История диалога:")
		for _, h := range in.History {
			lines = append(lines, fmt.Sprintf("%s: %s", roleLabel(h.Role), h.Text))
		}
	}

	lines = append(lines, fmt.Sprintf("Доступные автомобили (до %d моделей в категории):", constants.PromptCarsPerCategory))
	for _, group := range groupByCategory(in.Catalog) {
		lines = append(lines, group.category+":")
		for i, car := range group.cars {
			if i == constants.PromptCarsPerCategory {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s — %s (%s)", car.FullName(), car.Price, car.Specs))
		}
	}

	lines = append(lines, "Задача: учитывая предпочтения пользователя, порекомендуй автомобили из базы и объясни выбор.")
	lines = append(lines, "Вопрос пользователя: "+in.Question)
	lines = append(lines,
		"Отвечай по-русски, дружелюбно и максимально кратко (не больше 2-3 предложений). "+
			"Если информации не хватает, предложи уточнить детали.")
	lines = append(lines,
		fmt.Sprintf("В конце добавь строку в формате '%s <модель1>, <модель2>' с названиями моделей из списка. ", constants.RecommendationMarker)+
			fmt.Sprintf("Если подходящих вариантов нет, напиши '%s нет данных'.", constants.RecommendationMarker))

	return strings.Join(lines, "\n")
}

func profileLine(p *entity.Profile) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "Пользователь: данные не указаны, обращение первое."
	}
	var b strings.Builder
	b.WriteString("Пользователь: ")
	b.WriteString(p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&b, ", %d лет", p.Age)
	}
	if p.City != "" {
		b.WriteString(", город ")
		b.WriteString(p.City)
	}
	return b.String()
}

func roleLabel(r Role) string {
	if r == RoleUser {
		return "Пользователь"
	}
	return "Бот"
}

type categoryGroup struct {
	category string
	cars     []entity.Car
}

// groupByCategory kategoriyalar birinchi uchragan tartibda
func groupByCategory(cars []entity.Car) []categoryGroup {
	var groups []categoryGroup
	index := make(map[string]int)
	for _, car := range cars {
		i, ok := index[car.Category]
		if !ok {
			i = len(groups)
			index[car.Category] = i
			groups = append(groups, categoryGroup{category: car.Category})
		}
		groups[i].cars = append(groups[i].cars, car)
	}
	return groups
}
