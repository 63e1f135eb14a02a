package services

import (
	"net/url"
	"path"
	"strings"
)

var documentExtensions = []string{".pdf", ".docx", ".doc"}

var documentMIMETypes = map[string]struct{}{
	"application/pdf":         {},
	"application/x-pdf":       {},
	"application/msword":      {},
	"application/vnd.ms-word": {},
	wordprocessingMIME:        {},
}

const wordprocessingMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var recruitingKeywords = []string{"cv", "curriculum", "resume", "hoja_vida", "hv"}

// IsProcessableDocument reports whether an attachment looks like a CV. The checks run in
// order and the first match wins: URL path extension, MIME allow-list, filename extension,
// recruiting keyword in the filename.
func IsProcessableDocument(rawURL, mimeType, filename string) bool {
	if hasDocumentExtension(urlPath(rawURL)) {
		return true
	}
	if isDocumentMIME(mimeType) {
		return true
	}
	if hasDocumentExtension(filename) {
		return true
	}
	return hasRecruitingKeyword(filename)
}

// DocumentExtension returns the lowercased document extension of name, or "".
func DocumentExtension(name string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	for _, known := range documentExtensions {
		if ext == known {
			return ext
		}
	}
	return ""
}

func hasDocumentExtension(name string) bool {
	return DocumentExtension(name) != ""
}

func urlPath(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	return rawURL
}

func isDocumentMIME(mimeType string) bool {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	_, ok := documentMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// ExtensionForMIME maps an allowed MIME type to a file extension.
func ExtensionForMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "application/pdf", "application/x-pdf":
		return ".pdf"
	case wordprocessingMIME:
		return ".docx"
	case "application/msword", "application/vnd.ms-word":
		return ".doc"
	default:
		return ""
	}
}

func hasRecruitingKeyword(filename string) bool {
	lower := strings.ToLower(filename)
	if lower == "" {
		return false
	}
	for _, kw := range recruitingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
