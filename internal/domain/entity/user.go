package entity

import "time"

// Profile onboarding davomida yig'iladigan foydalanuvchi ma'lumotlari
type Profile struct {
	ID     int64 // saqlangandan keyin beriladi, 0 = hali saqlanmagan
	ChatID int64
	Name   string
	Age    int // 0 = noma'lum
	City   string
}

// Persisted profil bazaga yozilganmi
func (p *Profile) Persisted() bool {
	return p != nil && p.ID > 0
}

// Feedback foydalanuvchining javobga bahosi
type Feedback struct {
	Question string
	Answer   string
	UserID   int64
	Liked    bool
}

// AIDialog AI turn audit yozuvi
type AIDialog struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id,omitempty"` // 0 = noma'lum
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
