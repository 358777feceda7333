// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
	ErrEmptyFile           = errors.New("file is empty")
)

const maxFileNameSize = 200

// UploadedFile is a multipart file that passed validation
type UploadedFile struct {
	File        multipart.File
	Name        string
	Size        int64
	ContentType string
}

// FileValidator checks an uploaded file against the request cap and, when
// allowed is not empty, against a list of content types. The content type is
// sniffed from the bytes, the header sent by the client is ignored. On
// success the returned file is rewound and must be closed by the caller
func FileValidator(fh *multipart.FileHeader, maxSize int64, allowed []string) (int, *UploadedFile, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if fh.Size <= 0 {
		return http.StatusBadRequest, nil, ErrEmptyFile
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, fmt.Errorf("failed to open file, %w", err)
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, fmt.Errorf("failed to detect file type, %w", err)
	}

	if len(allowed) > 0 && !slices.ContainsFunc(allowed, mime.Is) {
		f.Close()
		return http.StatusBadRequest, nil, ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, fmt.Errorf("failed to rewind file, %w", err)
	}

	return 0, &UploadedFile{
		File:        f,
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: mime.String(),
	}, nil
}
