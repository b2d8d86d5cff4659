package client

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"codechat/internal/domain/models"
)

// maxImageSize bounds attachments; inline payloads travel base64-encoded
// inside the transcript.
const maxImageSize = 8 << 20

// LoadImage reads an image file into an inline base64 payload.
func LoadImage(path string) (*models.InlineImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("image %s exceeds %d bytes", path, maxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return &models.InlineImage{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Name:     filepath.Base(path),
	}, nil
}
