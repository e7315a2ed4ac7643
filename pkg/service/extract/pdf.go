package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
)

// pdfText extracts the concatenated text runs of every page in page order.
// Items are joined with a single space; no paragraph structure is
// reconstructed.
func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open pdf")
	}

	var runs []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, item := range page.Content().Text {
			if item.S != "" {
				runs = append(runs, item.S)
			}
		}
	}

	return strings.Join(runs, " "), nil
}
