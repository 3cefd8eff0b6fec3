// internal/utils/image.go
package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
	ErrImageUnsupported = errors.New("only jpeg, png, gif and webp images are accepted")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Image is an uploaded picture ready for storage.
type Image struct {
	Payload  string // base64
	MimeType string
	Size     int64
}

// ReadImage checks the upload against maxBytes and sniffs its type from the
// content, ignoring the client supplied header.
func ReadImage(fh *multipart.FileHeader, maxBytes int64) (*Image, error) {
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}

	return DecodeImage(data)
}

func DecodeImage(data []byte) (*Image, error) {
	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		return nil, fmt.Errorf("%w: got %s", ErrImageUnsupported, mimeType)
	}

	return &Image{
		Payload:  base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}
