package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MaxUploadSize = 5 << 20 // 5 MB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadStore saves attachments to local disk and hands back metadata for
// the owning record's JSON column. Files are served via the /uploads static
// route.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Save validates and stores one uploaded file, returning its reference.
func (s *UploadStore) Save(c *gin.Context, file *multipart.FileHeader) (*models.FileRef, error) {
	if file.Size > MaxUploadSize {
		return nil, fmt.Errorf("file exceeds %d byte limit", MaxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("files of type pdf, doc, docx, jpg, jpeg, png only")
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &models.FileRef{
		Filename:     filename,
		OriginalName: file.Filename,
		Path:         path,
		MimeType:     file.Header.Get("Content-Type"),
	}, nil
}

// Remove deletes a stored file; missing files are not an error.
func (s *UploadStore) Remove(ref *models.FileRef) error {
	if ref == nil || ref.Path == "" {
		return nil
	}
	if err := os.Remove(ref.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
