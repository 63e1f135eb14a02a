package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

// TextExtractor pulls plain text out of a CV file.
type TextExtractor interface {
	ExtractText(filePath string) (string, error)
}

type documentTextExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &documentTextExtractor{}
}

// ExtractText dispatches on the file extension. Parser panics on malformed input are
// reported as ErrExtractionFailed.
func (e *documentTextExtractor) ExtractText(filePath string) (text string, err error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s parser panicked: %v", models.ErrExtractionFailed, ext, r)
		}
	}()

	switch ext {
	case ".pdf":
		text, err = extractPDF(filePath)
	case ".docx", ".doc":
		text, err = extractWord(filePath)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content found in %s", models.ErrExtractionFailed, filepath.Base(filePath))
	}
	return text, nil
}

func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractWord(filePath string) (string, error) {
	res, err := docconv.ConvertPath(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return res.Body, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
