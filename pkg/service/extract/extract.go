package extract

import (
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// MaxFileSize is the hard ceiling checked before any decoding begins
const MaxFileSize = 4 << 20

// Sentinel errors, one per failure case, so callers can localize the message
// shown to the user. Decoder diagnostics are logged, never surfaced.
var (
	ErrFileTooLarge      = goerr.New("file size exceeds 4MB limit")
	ErrUnsupportedFormat = goerr.New("unsupported file format")
	ErrExtractionFailed  = goerr.New("failed to read file content")
	ErrEmptyContent      = goerr.New("could not extract content from the file")
)

var imageMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Process normalizes an uploaded file into an attachment. Images become
// base64 with a displayable data-URL preview; PDF, .docx, .xlsx and plain
// text become extracted text. mimeType may be empty, in which case it is
// detected from the file name and content.
func Process(ctx context.Context, name, mimeType string, data []byte) (*model.Attachment, error) {
	if len(data) > MaxFileSize {
		return nil, goerr.Wrap(ErrFileTooLarge, "rejecting oversize file",
			goerr.V("name", name), goerr.V("size", len(data)))
	}

	if mimeType == "" {
		mimeType = detectMIME(name, data)
	}

	if imageMIMETypes[mimeType] {
		encoded := base64.StdEncoding.EncodeToString(data)
		if encoded == "" {
			return nil, goerr.Wrap(ErrEmptyContent, "empty image file", goerr.V("name", name))
		}
		return &model.Attachment{
			Name:       name,
			Kind:       model.AttachmentImage,
			PreviewURL: "data:" + mimeType + ";base64," + encoded,
			MIMEType:   mimeType,
			Content:    encoded,
		}, nil
	}

	text, err := extractText(ctx, name, mimeType, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, goerr.Wrap(ErrEmptyContent, "extraction yielded no content", goerr.V("name", name))
	}

	return &model.Attachment{
		Name:    name,
		Kind:    model.AttachmentDocument,
		Content: text,
	}, nil
}

func extractText(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	lower := strings.ToLower(name)

	var text string
	var err error
	switch {
	case mimeType == "application/pdf":
		text, err = pdfText(data)
	case strings.HasSuffix(lower, ".docx"):
		text, err = docxText(data)
	case strings.HasSuffix(lower, ".xlsx"):
		text, err = xlsxText(data)
	case strings.HasPrefix(mimeType, "text/plain"):
		text = string(data)
	default:
		return "", goerr.Wrap(ErrUnsupportedFormat, "no decoder for file",
			goerr.V("name", name), goerr.V("mime_type", mimeType))
	}

	if err != nil {
		logging.From(ctx).Warn("file extraction failed", "name", name, "error", err)
		return "", goerr.Wrap(ErrExtractionFailed, "decoder failed", goerr.V("name", name))
	}
	return text, nil
}

// detectMIME resolves the media type from the file extension first, then by
// sniffing the content. The extension wins because .docx/.xlsx dispatch is
// extension-based anyway and sniffing reports them both as zip archives.
func detectMIME(name string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}

	sniffed := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mediaType
	}
	return sniffed
}
