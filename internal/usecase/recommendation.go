package usecase

import (
	"strings"

	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
)

var noDataTokens = wordSet("нет данных", "нет", "none")

// ExtractRecommendations maps the text after the last "Рекомендую:" marker back onto catalog records.
// A record matches a token when the token equals or is contained in its lowercased "brand model" name.
func ExtractRecommendations(reply string, catalog []entity.Car) []RecommendationMatch {
	tail, ok := afterLastMarker(reply, constants.RecommendationMarker)
	if !ok {
		return nil
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return nil
	}

	// a new line ends the recommendation list just like a comma does
	tail = strings.NewReplacer("\r\n", ",", "\n", ",", "\r", ",").Replace(tail)
	var tokens []string
	for _, raw := range strings.Split(tail, ",") {
		tok := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), "."))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	names := make([]string, len(catalog))
	for i, car := range catalog {
		names[i] = strings.ToLower(car.FullName())
	}

	var matches []RecommendationMatch
	seen := make(map[entity.CarKey]struct{})
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if _, skip := noDataTokens[lower]; skip {
			continue
		}
		for i, name := range names {
			if name != lower && !strings.Contains(name, lower) {
				continue
			}
			key := catalog[i].Key()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				matches = append(matches, RecommendationMatch{Car: catalog[i], Token: tok})
			}
			break
		}
		if len(matches) >= constants.MaxSuggestions {
			break
		}
	}
	return matches
}

// afterLastMarker returns the text following the last case-insensitive occurrence of marker.
func afterLastMarker(text, marker string) (string, bool) {
	runes := []rune(text)
	m := []rune(marker)
	for i := len(runes) - len(m); i >= 0; i-- {
		if strings.EqualFold(string(runes[i:i+len(m)]), marker) {
			return string(runes[i+len(m):]), true
		}
	}
	return "", false
}
