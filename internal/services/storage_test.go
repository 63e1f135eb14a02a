package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, maxSize int64) *storageService {
	t.Helper()
	root := t.TempDir()
	s := NewStorageService(filepath.Join(root, "tmp"), filepath.Join(root, "cvs"), "/app/cv_storage/", maxSize).(*storageService)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }
	require.NoError(t, s.EnsureDirs())
	return s
}

func TestSaveTempNaming(t *testing.T) {
	s := newTestStorage(t, 0)

	path, err := s.SaveTemp(strings.NewReader("%PDF-1.4"), "51987654321@c.us", "pdf")
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "cv_51987654321_1741944413_"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSaveTempRejectsOversized(t *testing.T) {
	s := newTestStorage(t, 4)

	_, err := s.SaveTemp(strings.NewReader("0123456789"), "51987654321", ".pdf")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(s.uploadPath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreCV(t *testing.T) {
	s := newTestStorage(t, 0)

	src, err := s.SaveTemp(strings.NewReader("contenido"), "51987654321", ".DOCX")
	require.NoError(t, err)

	stored, err := s.StoreCV(src, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, "CV_51987654321_20250314_092653.docx", stored.Filename)
	assert.Equal(t, "/app/cv_storage/CV_51987654321_20250314_092653.docx", stored.PublicURL)

	data, err := os.ReadFile(stored.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))
}

func TestStoreCVSameSecondKeepsBothCopies(t *testing.T) {
	s := newTestStorage(t, 0)

	first, err := s.SaveTemp(strings.NewReader("primero"), "51987654321", ".pdf")
	require.NoError(t, err)
	second, err := s.SaveTemp(strings.NewReader("segundo"), "51987654321", ".pdf")
	require.NoError(t, err)

	a, err := s.StoreCV(first, "51987654321")
	require.NoError(t, err)
	b, err := s.StoreCV(second, "51987654321")
	require.NoError(t, err)

	assert.Equal(t, "CV_51987654321_20250314_092653.pdf", a.Filename)
	assert.NotEqual(t, a.Filename, b.Filename)
	assert.True(t, strings.HasPrefix(b.Filename, "CV_51987654321_20250314_092653_"))
	assert.True(t, strings.HasSuffix(b.Filename, ".pdf"))

	data, err := os.ReadFile(a.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "primero", string(data))
	data, err = os.ReadFile(b.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "segundo", string(data))
}

func TestStoreCVMissingSource(t *testing.T) {
	s := newTestStorage(t, 0)

	_, err := s.StoreCV(filepath.Join(s.uploadPath, "missing.pdf"), "51987654321")
	assert.Error(t, err)
}

func TestDeleteFileIgnoresMissing(t *testing.T) {
	s := newTestStorage(t, 0)
	assert.NoError(t, s.DeleteFile(filepath.Join(s.uploadPath, "missing.pdf")))
}
