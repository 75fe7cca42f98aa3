package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotXLSX fayl .xlsx (ZIP) emas
	ErrNotXLSX = errors.New("not an .xlsx file")
	// ErrLegacyXLS eski .xls (OLE2) formati qo'llab-quvvatlanmaydi
	ErrLegacyXLS = errors.New("legacy .xls format is not supported, save the file as .xlsx")
)

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// checkSignature fayl boshidagi magic number ni tekshiradi va o'qish joyini qaytaradi
func checkSignature(r io.ReadSeeker) error {
	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read file header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind file: %w", err)
	}

	head = head[:n]
	switch {
	case bytes.Equal(head, zipMagic):
		return nil
	case bytes.Equal(head, ole2Magic):
		return ErrLegacyXLS
	default:
		return ErrNotXLSX
	}
}
