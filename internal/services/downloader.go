package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
)

const defaultDocumentExtension = ".pdf"

// MediaDownloader fetches an inbound attachment into the temp upload directory.
type MediaDownloader interface {
	Download(ctx context.Context, att models.Attachment, phone string) (string, error)
}

type mediaDownloader struct {
	storage  StorageService
	http     *http.Client
	timeout  time.Duration
	hostFrom string
	hostTo   string
	apiKey   string
	log      *zap.Logger
}

// NewMediaDownloader rewrites media URLs pointing at hostFrom to hostTo, so links the gateway
// builds for its own address resolve inside the container network.
func NewMediaDownloader(storage StorageService, timeout time.Duration, hostFrom, hostTo, apiKey string, log *zap.Logger) MediaDownloader {
	return &mediaDownloader{
		storage:  storage,
		http:     &http.Client{},
		timeout:  timeout,
		hostFrom: hostFrom,
		hostTo:   hostTo,
		apiKey:   apiKey,
		log:      logger.OrNop(log).Named("downloader"),
	}
}

// Download implements MediaDownloader. Every failure wraps models.ErrDownloadFailed.
func (d *mediaDownloader) Download(ctx context.Context, att models.Attachment, phone string) (string, error) {
	mediaURL := d.rewriteHost(att.URL)
	if mediaURL == "" {
		return "", fmt.Errorf("%w: empty media url", models.ErrDownloadFailed)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}
	if d.apiKey != "" {
		req.Header.Set("X-Api-Key", d.apiKey)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d", models.ErrDownloadFailed, resp.StatusCode)
	}

	mimeType := att.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	ext := attachmentExtension(mediaURL, att.Filename, mimeType)

	path, err := d.storage.SaveTemp(resp.Body, phone, ext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}

	d.log.Info("media downloaded",
		zap.String("phone", phone),
		zap.String("url", mediaURL),
		zap.String("path", path),
	)
	return path, nil
}

func (d *mediaDownloader) rewriteHost(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if d.hostFrom == "" || d.hostTo == "" || !strings.Contains(rawURL, d.hostFrom) {
		return rawURL
	}
	return strings.Replace(rawURL, d.hostFrom, d.hostTo, 1)
}

// attachmentExtension picks the document extension from the URL, then the filename, then the
// MIME type, defaulting to PDF.
func attachmentExtension(rawURL, filename, mimeType string) string {
	if ext := DocumentExtension(urlPath(rawURL)); ext != "" {
		return ext
	}
	if ext := DocumentExtension(filename); ext != "" {
		return ext
	}
	if ext := ExtensionForMIME(mimeType); ext != "" {
		return ext
	}
	return defaultDocumentExtension
}
