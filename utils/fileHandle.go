package utils

import (
	"errors"
	"fmt"
	"io"
	"learnfront/models/course"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes bounds a single uploaded file held in memory
const MaxUploadBytes = 32 << 20

var ErrUploadTooLarge = errors.New("uploaded file is too large")

// ReadUploadedFile buffers a multipart file and sniffs its real content type
func ReadUploadedFile(file *multipart.FileHeader) (*course.Upload, error) {
	if file.Size > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	return NewUpload(file.Filename, data), nil
}

// NewUpload wraps raw bytes. The filename is reduced to its base name and gets
// an extension from the sniffed type when it has none.
func NewUpload(filename string, data []byte) *course.Upload {
	mt := mimetype.Detect(data)

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}
	if filepath.Ext(name) == "" {
		name = fmt.Sprintf("%s%s", name, mt.Extension())
	}

	return &course.Upload{
		Filename:    name,
		ContentType: mt.String(),
		Data:        data,
	}
}
