package extract

import (
	"fmt"
	"log"

	"github.com/ledongthuc/pdf"
)

func pdfPages(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []Page
	total := r.NumPage()

	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Битая страница не должна ронять весь документ
			log.Printf("⚠️  %s: page %d skipped: %v", path, i, err)
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	log.Printf("📄 %s: %d/%d pages extracted", path, len(pages), total)
	return pages, nil
}
