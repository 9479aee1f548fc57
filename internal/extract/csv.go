package extract

import (
	"encoding/csv"
	"strings"
)

// extractCSV scans every cell. Rows that the csv reader rejects fall back to
// a plain-text scan of the whole file.
func extractCSV(content []byte) ([]string, error) {
	text := toValidUTF8(content)

	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return FindURLs(text), nil
	}

	var links []string
	for _, row := range records {
		for _, cell := range row {
			links = append(links, FindURLs(cell)...)
		}
	}
	return links, nil
}
