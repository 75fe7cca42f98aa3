package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"go.uber.org/zap"
)

type column int

const (
	colCategory column = iota
	colBrand
	colModel
	colPrice
	colDescription
	colImage
	colSpecs
	colDiscount
)

// sarlavha nomlari (registrsiz); ruscha asosiy, inglizcha muqobil
var headerAliases = map[string]column{
	"категория":      colCategory,
	"category":       colCategory,
	"марка":          colBrand,
	"brand":          colBrand,
	"модель":         colModel,
	"model":          colModel,
	"цена":           colPrice,
	"price":          colPrice,
	"описание":       colDescription,
	"description":    colDescription,
	"фото":           colImage,
	"image":          colImage,
	"photo":          colImage,
	"характеристики": colSpecs,
	"specs":          colSpecs,
	"акция":          colDiscount,
	"discount":       colDiscount,
}

// ExcelCatalogParser .xlsx fayldan katalogni o'qiydi (birinchi varaq, birinchi qator sarlavha)
type ExcelCatalogParser struct {
	log *zap.Logger
}

// NewExcelCatalogParser yangi parser yaratish
func NewExcelCatalogParser(log *zap.Logger) *ExcelCatalogParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExcelCatalogParser{log: log}
}

// ParseFile fayl yo'li bo'yicha o'qish
func (p *ExcelCatalogParser) ParseFile(path string) ([]entity.Car, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	if err := checkSignature(f); err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return p.Parse(f)
}

// Parse brand yoki model bo'sh qatorlar tashlab ketiladi
func (p *ExcelCatalogParser) Parse(r io.Reader) ([]entity.Car, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var cars []entity.Car
	skipped := 0
	for i, row := range rows[1:] {
		get := func(c column) string {
			idx, ok := index[c]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		car := entity.Car{
			Category:    get(colCategory),
			Brand:       get(colBrand),
			Model:       get(colModel),
			Price:       normalizePrice(get(colPrice)),
			Description: get(colDescription),
			Image:       get(colImage),
			Specs:       get(colSpecs),
			Discounted:  parseFlag(get(colDiscount)),
		}
		if car.Brand == "" || car.Model == "" {
			if strings.TrimSpace(strings.Join(row, "")) != "" {
				skipped++
				p.log.Warn("catalog row skipped", zap.Int("row", i+2), zap.String("sheet", sheet))
			}
			continue
		}
		cars = append(cars, car)
	}
	p.log.Info("catalog parsed", zap.Int("cars", len(cars)), zap.Int("skipped", skipped))
	return cars, nil
}

func headerIndex(header []string) (map[column]int, error) {
	index := make(map[column]int)
	for i, h := range header {
		if c, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
	}
	for _, required := range []column{colBrand, colModel} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("catalog header must contain Марка and Модель columns")
		}
	}
	return index, nil
}

// normalizePrice faqat raqamdan iborat narx "12 000 000 ₸" ko'rinishiga keltiriladi
func normalizePrice(raw string) string {
	if raw == "" {
		return ""
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return raw
	}
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + " ₸"
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "да", "yes", "true", "+", "y":
		return true
	}
	return false
}
