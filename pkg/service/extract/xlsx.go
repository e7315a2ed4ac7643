package extract

import (
	"bytes"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"
)

// xlsxText renders each sheet as a named header block followed by a markdown
// table: first row as table header, remaining rows as body. Sheets are
// processed in workbook-declared order.
func xlsxText(data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open xlsx")
	}
	defer workbook.Close()

	var b strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		b.WriteString("\n--- Sheet: " + sheet + " ---\n")

		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read sheet", goerr.V("sheet", sheet))
		}
		if len(rows) == 0 {
			continue
		}

		header := rows[0]
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")

		separators := make([]string, len(header))
		for i := range separators {
			separators[i] = "---"
		}
		b.WriteString("| " + strings.Join(separators, " | ") + " |\n")

		for _, row := range rows[1:] {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
	}

	return b.String(), nil
}
