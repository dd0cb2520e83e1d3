// Package pdftext pulls plain text out of uploaded case documents.
package pdftext

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// IsSupported reports whether filename has an extension the indexer can read.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}

// ContentType maps a supported filename to its MIME type, or "" if unsupported.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return ""
	}
}

// Extract returns the text of content. PDFs are parsed page by page; pages
// that fail to extract are skipped. Anything else is treated as plain text.
// The result is always valid UTF-8 without NUL bytes, which Postgres TEXT
// columns reject.
func Extract(filename string, content []byte) (string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return clean(string(content)), nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return clean(sb.String()), nil
}

func clean(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, "\uFFFD"), "\x00", "")
}
