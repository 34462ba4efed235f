// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// magic is the header every PDF file starts with.
var magic = []byte("%PDF-")

// IsPDF reports whether the file at path starts with the PDF header.
func IsPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, magic)
}

// ExtractText extracts all text from the first N pages of a PDF.
// maxPages <= 0 reads every page.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", filePath, err)
	}
	defer f.Close()

	return pageText(r, maxPages), nil
}

// ExtractTextReader extracts text from a PDF reader.
func ExtractTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	return pageText(pdfReader, maxPages), nil
}

// pageText joins the plain text of each page with newlines. Pages that
// fail to decode are skipped.
func pageText(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}

// ReadDocument returns the text of a document: extracted text for PDFs,
// the raw contents for anything else.
func ReadDocument(path string) (string, error) {
	if IsPDF(path) {
		return ExtractText(path, 0)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
