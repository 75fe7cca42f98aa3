package parser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"xlsx", append([]byte{0x50, 0x4B, 0x03, 0x04}, 0x14, 0x00), nil},
		{"xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, ErrLegacyXLS},
		{"csv", []byte("Марка;Модель\n"), ErrNotXLSX},
		{"short", []byte{0x50}, ErrNotXLSX},
		{"empty", nil, ErrNotXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			err := checkSignature(r)
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			// o'qish joyi boshiga qaytgan
			pos, _ := r.Seek(0, io.SeekCurrent)
			assert.Zero(t, pos)
		})
	}
}

func TestParseFileRejectsNonXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("Марка,Модель\nToyota,Camry\n"), 0o644))

	_, err := NewExcelCatalogParser(nil).ParseFile(path)
	assert.ErrorIs(t, err, ErrNotXLSX)
}

func TestParseFileXLSX(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"Марка", "Модель", "Цена"},
		{"Toyota", "Camry 70", "18000000"},
	})
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cars, err := NewExcelCatalogParser(nil).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Camry 70", cars[0].Model)
}
