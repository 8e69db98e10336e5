package artifact

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/logging"
)

// DefaultFetchTimeout bounds the download of a remote image
const DefaultFetchTimeout = 30 * time.Second

// maxImageSize caps how much of a remote image is read
const maxImageSize = 64 << 20

var (
	// ErrUnsupportedLocation is returned for locations that are neither data nor http(s) URLs
	ErrUnsupportedLocation = errors.New("unsupported image location")

	// ErrImageTooLarge is returned when a remote image exceeds maxImageSize
	ErrImageTooLarge = errors.New("image too large")
)

// HTTPClient is used to fetch remote images
var HTTPClient = &http.Client{Timeout: DefaultFetchTimeout}

// Image is a decoded image and its media type
type Image struct {
	MediaType string
	Data      []byte
}

// Extension returns the file extension for the image's media type
func (img Image) Extension() string {
	switch img.MediaType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(img.MediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// ParseDataURL decodes a base64 data URL
func ParseDataURL(location string) (Image, error) {
	rest, ok := strings.CutPrefix(location, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("data URL has no payload")
	}

	mediaType, encoded := strings.CutSuffix(meta, ";base64")
	if !encoded {
		return Image{}, fmt.Errorf("data URL is not base64 encoded")
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode data URL: %w", err)
	}

	return Image{MediaType: mediaType, Data: data}, nil
}

// Fetch downloads a remote image
func Fetch(ctx context.Context, location string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return Image{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("failed to fetch image: unexpected status %d", resp.StatusCode)
	}

	if resp.ContentLength > maxImageSize {
		return Image{}, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageSize {
		return Image{}, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxImageSize)
	}

	mediaType := resp.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	} else {
		mediaType = http.DetectContentType(data)
		mediaType, _, _ = strings.Cut(mediaType, ";")
	}

	return Image{MediaType: mediaType, Data: data}, nil
}

// Load resolves an image location into its bytes
func Load(ctx context.Context, location string) (Image, error) {
	if strings.HasPrefix(location, "data:") {
		return ParseDataURL(location)
	}

	u, err := url.Parse(location)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedLocation, logging.Truncate(location, 64))
	}
	return Fetch(ctx, location)
}

// Save writes the image at location into dir and returns the file path.
// The directory is created if needed.
func Save(ctx context.Context, location, dir string) (string, error) {
	img, err := Load(ctx, location)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	path := filepath.Join(dir, "stylegen-"+id.String()+img.Extension())

	if err := writeFileAtomic(path, img.Data); err != nil {
		return "", err
	}

	logging.Info("Saved image",
		zap.String("path", path),
		zap.String("media_type", img.MediaType),
		zap.Int("bytes", len(img.Data)),
	)
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary image file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save image file: %w", err)
	}
	return nil
}
