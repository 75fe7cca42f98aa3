package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(matches []RecommendationMatch) []string {
	var out []string
	for _, m := range matches {
		out = append(out, m.Car.FullName())
	}
	return out
}

func TestExtractRecommendations(t *testing.T) {
	catalog := testCatalog()
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"two models", "Неплохой выбор. Рекомендую: Camry 50, Elantra", []string{"Toyota Camry 50", "Hyundai Elantra"}},
		{"no data sentinel", "Рекомендую: нет данных", nil},
		{"none sentinel", "Рекомендую: None.", nil},
		{"no marker", "Camry 50 хороший вариант", nil},
		{"empty after marker", "Смотри сам. Рекомендую:   ", nil},
		{"case insensitive marker", "рекомендую: rav4", []string{"Toyota RAV4"}},
		{"last marker wins", "Рекомендую: RAV4. Хотя нет, РЕКОМЕНДУЮ: Sportage", []string{"Kia Sportage"}},
		{"trailing periods", "Рекомендую: Toyota Camry 50., Kia Sportage.", []string{"Toyota Camry 50", "Kia Sportage"}},
		{"dedup by brand and model", "Рекомендую: Camry 50, Toyota Camry 50, camry", []string{"Toyota Camry 50"}},
		{"first match per token", "Рекомендую: Toyota", []string{"Toyota Camry 50"}},
		{"token longer than name does not match", "Рекомендую: Toyota Camry 50 Hybrid Premium", nil},
		{"sentinel skipped among models", "Рекомендую: нет, Elantra", []string{"Hyundai Elantra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(ExtractRecommendations(tt.reply, catalog)))
		})
	}
}

func TestExtractRecommendationsKeepsToken(t *testing.T) {
	got := ExtractRecommendations("Рекомендую: Elantra", testCatalog())
	require.Len(t, got, 1)
	assert.Equal(t, "Elantra", got[0].Token)
	assert.Equal(t, "Hyundai", got[0].Car.Brand)
}

func TestExtractRecommendationsStopsAtFive(t *testing.T) {
	reply := "Рекомендую: Camry 50, Elantra, Sportage, RAV4, NQR 75, TGS 26.440"
	got := ExtractRecommendations(reply, testCatalog())
	assert.Equal(t, []string{"Toyota Camry 50", "Hyundai Elantra", "Kia Sportage", "Toyota RAV4", "Isuzu NQR 75"}, names(got))
}

func TestExtractRecommendationsIgnoresTrailingText(t *testing.T) {
	base := "Отличные варианты. Рекомендую: Camry 50, Elantra"
	want := names(ExtractRecommendations(base, testCatalog()))
	require.NotEmpty(t, want)

	for _, suffix := range []string{
		"\nЕсли нужно, расскажу подробнее.",
		"\n\nУдачи с выбором!",
		"\r\nP.S. цены актуальны на сегодня",
	} {
		assert.Equal(t, want, names(ExtractRecommendations(base+suffix, testCatalog())), "suffix %q", suffix)
	}
}

func TestExtractRecommendationsLineBreakSeparatesTokens(t *testing.T) {
	got := ExtractRecommendations("Рекомендую: Toyota\nCamry 50", testCatalog())
	require.Len(t, got, 1)
	assert.Equal(t, "Toyota", got[0].Token)
	assert.Equal(t, "Toyota Camry 50", got[0].Car.FullName())
}

func TestExtractRecommendationsEmptyCatalog(t *testing.T) {
	assert.Empty(t, ExtractRecommendations("Рекомендую: Camry 50", nil))
}
