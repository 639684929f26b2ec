package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize is the largest document a case accepts
const MaxFileSize int64 = 10 << 20

// Object describes a stored blob
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// Store persists document bytes under an opaque key
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
}

// Policy errors
var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrTooLarge    = errors.New("file exceeds the size limit")
	ErrFileType    = errors.New("file type is not allowed")
	ErrContentType = errors.New("content type does not match the file extension")
)

// Policy restricts what may be attached to a case
type Policy struct {
	MaxSize int64
	// Types maps a lower-case extension to the content types accepted for it
	Types map[string][]string
}

// DefaultPolicy accepts images, PDFs and Word documents up to MaxFileSize
func DefaultPolicy() Policy {
	return Policy{
		MaxSize: MaxFileSize,
		Types: map[string][]string{
			".jpg":  {"image/jpeg"},
			".jpeg": {"image/jpeg"},
			".png":  {"image/png"},
			".gif":  {"image/gif"},
			".webp": {"image/webp"},
			".pdf":  {"application/pdf"},
			".doc":  {"application/msword", "application/x-ole-storage"},
			".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
		},
	}
}

// Check validates a file's name, declared content type and size
func (p Policy) Check(fileName, contentType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > p.MaxSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, size, p.MaxSize)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	accepted, ok := p.Types[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFileType, ext)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrContentType, contentType)
	}
	for _, t := range accepted {
		if t == mediaType {
			return nil
		}
	}
	return fmt.Errorf("%w: %s for %s", ErrContentType, mediaType, ext)
}

// NewKey builds a unique storage key for a document attached to a case
func NewKey(caseID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join("cases", caseID, uuid.New().String()+ext)
}
