package extract

import (
	"bytes"

	"code.sajari.com/docconv"
	"github.com/m-mizutani/goerr/v2"
)

// docxText extracts the raw text of a .docx file, discarding all formatting
func docxText(data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", goerr.Wrap(err, "failed to convert docx")
	}
	return text, nil
}
