package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	cancelWords = wordSet("стоп", "выход", "меню", "stop", "exit", "menu")
	yesWords    = wordSet("да", "ага", "конечно", "давай", "yes", "y")
	noWords     = wordSet("нет", "неа", "no", "n", "не надо")
	skipWords   = wordSet("пропустить", "skip")

	reDigits = regexp.MustCompile(`\d+`)
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func inSet(set map[string]struct{}, text string) bool {
	_, ok := set[normalize(text)]
	return ok
}

func isCancel(text string) bool { return inSet(cancelWords, text) }
func isYes(text string) bool    { return inSet(yesWords, text) }
func isNo(text string) bool     { return inSet(noWords, text) }

// filterValue "пропустить" yoki bo'sh matn -> cheklov yo'q
func filterValue(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || inSet(skipWords, text) {
		return ""
	}
	return text
}

// firstNumber matndagi birinchi raqamlar ketma-ketligi ("за 12000000" -> 12000000)
func firstNumber(text string) (int64, bool) {
	m := reDigits.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
