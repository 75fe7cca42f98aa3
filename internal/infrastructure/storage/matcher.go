package storage

import (
	"strings"

	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

// matchCanned avval aniq moslik (registrsiz), keyin saqlangan savol foydalanuvchi matnini o'z ichiga olsa.
func matchCanned(entries []entity.CannedAnswer, text string) *entity.CannedAnswer {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	for _, e := range entries {
		if strings.ToLower(strings.TrimSpace(e.Question)) == needle {
			e := e
			return &e
		}
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Question), needle) {
			e := e
			return &e
		}
	}
	return nil
}

// cannedFromSections help savollari ham tayyor javob sifatida ishlatiladi
func cannedFromSections(sections []entity.HelpSection) []entity.CannedAnswer {
	var out []entity.CannedAnswer
	for _, s := range sections {
		for _, q := range s.Questions {
			out = append(out, entity.CannedAnswer{Question: q.Question, Answer: q.Answer})
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func selectCars(cars []entity.Car, pred func(entity.Car) bool) []entity.Car {
	var out []entity.Car
	for _, c := range cars {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func matchesFilters(c entity.Car, brand, model string) bool {
	if brand != "" && !containsFold(c.Brand, brand) {
		return false
	}
	if model != "" && !containsFold(c.Model, model) {
		return false
	}
	return true
}

// matchesName model yoki "brand model" bo'yicha qism-satr
func matchesName(c entity.Car, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return containsFold(c.Model, text) || containsFold(c.Brand+" "+c.Model, text)
}

// filterPriceBand narxi [center-width, center+width] oralig'idagi yozuvlar; narxi o'qilmaydiganlar tashlanadi
func filterPriceBand(cars []entity.Car, center, width int64) []entity.Car {
	var out []entity.Car
	for _, c := range cars {
		v, ok := c.PriceValue()
		if !ok {
			continue
		}
		if v >= center-width && v <= center+width {
			out = append(out, c)
		}
	}
	return out
}
