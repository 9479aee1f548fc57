// Package extract pulls http(s) URLs out of uploaded txt, csv, xlsx and pdf files.
package extract

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is a supported upload type, keyed by file extension.
type Format int

const (
	FormatUnsupported Format = iota
	FormatText
	FormatCSV
	FormatXLSX
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatPDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// ErrUnsupportedFormat is returned for any extension outside the supported set.
var ErrUnsupportedFormat = errors.New("Unsupported file type. Supported: .txt, .csv, .xlsx, .pdf")

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

type extractorFunc func(content []byte) ([]string, error)

var extractors = map[Format]extractorFunc{
	FormatText: extractText,
	FormatCSV:  extractCSV,
	FormatXLSX: extractXLSX,
	FormatPDF:  extractPDF,
}

var extensions = map[string]Format{
	".txt":  FormatText,
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".pdf":  FormatPDF,
}

// DetectFormat maps filename's extension (case-insensitive) to a Format.
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensions[ext]; ok {
		return f
	}
	return FormatUnsupported
}

// ExtractLinks returns every URL found in content, in document order and
// with duplicates kept. The format is chosen from filename.
func ExtractLinks(content []byte, filename string) ([]string, error) {
	fn, ok := extractors[DetectFormat(filename)]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return fn(content)
}

// FindURLs returns every http(s) URL in text.
func FindURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

func extractText(content []byte) ([]string, error) {
	return FindURLs(toValidUTF8(content)), nil
}

func toValidUTF8(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}
