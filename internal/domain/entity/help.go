package entity

// HelpSection yordam bo'limi (kategoriya) va uning savollari
type HelpSection struct {
	Key       string
	Label     string
	Button    string
	SortIndex int
	Questions []HelpQuestion
}

// HelpQuestion yordam bo'limidagi savol-javob
type HelpQuestion struct {
	Question string
	Answer   string
}

// CannedAnswer oldindan tayyorlangan javob
type CannedAnswer struct {
	Question string
	Answer   string
}
