package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

var ErrFileTooLarge = errors.New("file exceeds maximum size")

type StorageService interface {
	EnsureDirs() error
	SaveTemp(src io.Reader, phone, ext string) (string, error)
	StoreCV(srcPath, phone string) (*StoredFile, error)
	DeleteFile(path string) error
}

// StoredFile is a durable CV copy and the locator written to the candidate record.
type StoredFile struct {
	FilePath  string
	Filename  string
	PublicURL string
}

type storageService struct {
	uploadPath   string
	cvPath       string
	publicPrefix string
	maxFileSize  int64
	now          func() time.Time
}

func NewStorageService(uploadPath, cvPath, publicPrefix string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:   uploadPath,
		cvPath:       cvPath,
		publicPrefix: publicPrefix,
		maxFileSize:  maxFileSize,
		now:          time.Now,
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.uploadPath, s.cvPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// SaveTemp writes src to a uniquely named file under the upload path.
func (s *storageService) SaveTemp(src io.Reader, phone, ext string) (string, error) {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	shortID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	name := fmt.Sprintf("cv_%s_%d_%s%s", sanitizeName(phone), s.now().Unix(), shortID, ext)
	filePath := filepath.Join(s.uploadPath, name)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	reader := src
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize+1)
	}

	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxFileSize > 0 && written > s.maxFileSize {
		err = fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	if err != nil {
		_ = os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

// StoreCV copies srcPath to CV_<phone>_<YYYYmmdd_HHMMSS><ext> under the CV storage root. When
// that name is taken a short random suffix is added, so an earlier copy is never overwritten.
func (s *storageService) StoreCV(srcPath, phone string) (*StoredFile, error) {
	if err := os.MkdirAll(s.cvPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageFailed, err)
	}

	ext := strings.ToLower(filepath.Ext(srcPath))
	base := fmt.Sprintf("CV_%s_%s", sanitizeName(phone), s.now().Format("20060102_150405"))

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open source file: %v", models.ErrStorageFailed, err)
	}
	defer src.Close()

	name := base + ext
	dstPath := filepath.Join(s.cvPath, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		shortID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		name = fmt.Sprintf("%s_%s%s", base, shortID, ext)
		dstPath = filepath.Join(s.cvPath, name)
		dst, err = os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create destination file: %v", models.ErrStorageFailed, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, fmt.Errorf("%w: failed to copy file: %v", models.ErrStorageFailed, err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to flush file: %v", models.ErrStorageFailed, err)
	}

	return &StoredFile{
		FilePath:  dstPath,
		Filename:  name,
		PublicURL: s.publicPrefix + name,
	}, nil
}

func (s *storageService) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// sanitizeName keeps file names free of path separators and gateway suffixes.
func sanitizeName(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "@")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
