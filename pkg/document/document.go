package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format is one of the accepted upload formats.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailure = errors.New("text extraction failed")
)

// Formats lists the allow-list in the order it is shown to clients.
func Formats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatText}
}

// ParseFormat maps a file name (or bare extension) to a Format.
func ParseFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = "." + strings.ToLower(strings.TrimPrefix(name, "."))
	}
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatText, nil
	}
	return "", ErrUnsupportedFormat
}

func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatText:
		return true
	}
	return false
}

// Ext returns the canonical extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}
