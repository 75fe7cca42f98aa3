package entity

import (
	"strconv"
	"strings"
	"unicode"
)

// Car katalogdagi bitta avtomobil yozuvi
type Car struct {
	ID          int64  `json:"id,omitempty"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Price       string `json:"price"` // ko'rsatish uchun, masalan "12 000 000 ₸"
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Specs       string `json:"specs"`
	Discounted  bool   `json:"discounted"`
}

// FullName "brand model" ko'rinishidagi to'liq nom
func (c Car) FullName() string {
	return strings.TrimSpace(c.Brand + " " + c.Model)
}

// Key deduplikatsiya uchun (brand, model) juftligi
func (c Car) Key() CarKey {
	return CarKey{Brand: c.Brand, Model: c.Model}
}

// PriceValue narx satridan raqamli qiymat ("12 000 000 ₸" -> 12000000).
func (c Car) PriceValue() (int64, bool) {
	return ParsePrice(c.Price)
}

// CarKey natural key of a catalog record.
type CarKey struct {
	Brand string
	Model string
}

// ParsePrice keeps only the digits of a display price.
func ParsePrice(display string) (int64, bool) {
	var b strings.Builder
	for _, r := range display {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
