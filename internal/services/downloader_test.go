package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

func TestDownloadSavesAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	storage := newTestStorage(t, 1024)
	d := NewMediaDownloader(storage, time.Second, "", "", "key", nil)

	path, err := d.Download(context.Background(), models.Attachment{URL: srv.URL + "/api/files/abc"}, "51987654321@c.us")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "cv_51987654321_"))
	assert.Equal(t, ".pdf", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestDownloadRewritesGatewayHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/cv.docx", r.URL.Path)
		_, _ = w.Write([]byte("docx"))
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	d := NewMediaDownloader(newTestStorage(t, 1024), time.Second, "localhost:3000", host, "", nil)

	path, err := d.Download(context.Background(), models.Attachment{URL: "http://localhost:3000/api/files/cv.docx"}, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, ".docx", filepath.Ext(path))
}

func TestDownloadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	d := NewMediaDownloader(newTestStorage(t, 16), time.Second, "", "", "", nil)

	tests := []struct {
		name string
		url  string
	}{
		{"empty url", ""},
		{"not found", srv.URL + "/missing"},
		{"too large", srv.URL + "/big.pdf"},
		{"unreachable", "http://127.0.0.1:1/cv.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Download(context.Background(), models.Attachment{URL: tt.url}, "51987654321")
			assert.ErrorIs(t, err, models.ErrDownloadFailed)
		})
	}
}

func TestAttachmentExtension(t *testing.T) {
	assert.Equal(t, ".doc", attachmentExtension("http://waha:3000/f/cv.DOC", "", ""))
	assert.Equal(t, ".docx", attachmentExtension("http://waha:3000/f/abc", "Mi CV.docx", ""))
	assert.Equal(t, ".docx", attachmentExtension("http://waha:3000/f/abc", "", wordprocessingMIME))
	assert.Equal(t, ".pdf", attachmentExtension("http://waha:3000/f/abc", "hoja de vida", "application/octet-stream"))
}
