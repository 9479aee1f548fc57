package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func extractXLSX(content []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var links []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if cell == "" {
					continue
				}
				links = append(links, FindURLs(cell)...)
			}
		}
	}
	return links, nil
}
