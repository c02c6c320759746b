package images

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

// Processor validates and stores uploaded images.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Process validates uploaded image data, stores it under the entity ID,
// and returns file info including a BlurHash placeholder.
// The format comes from the file's magic bytes, never from the
// client-supplied filename or content type.
func (p *Processor) Process(id string, data []byte) (*domain.ImageFileInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s.%s", id, format)

	if err := p.storage.Save(filename, data); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	info := &domain.ImageFileInfo{
		Path:     p.storage.RelativePath(filename),
		Filename: filename,
		Format:   format,
		Size:     int64(len(data)),
	}

	// BlurHash failure is not fatal, the image itself is fine.
	hash, err := ComputeBlurHash(data)
	if err != nil {
		p.logger.Warn("failed to compute blurhash", "id", id, "error", err)
	} else {
		info.BlurHash = hash
	}

	p.logger.Debug("processed image",
		"id", id,
		"format", format,
		"size", info.Size,
	)

	return info, nil
}

// Remove deletes a previously stored image.
func (p *Processor) Remove(info *domain.ImageFileInfo) error {
	if info == nil || info.Filename == "" {
		return nil
	}
	return p.storage.Delete(info.Filename)
}

// Magic byte signatures for supported image formats.
var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	gifMagic  = []byte("GIF8")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// DetectFormat identifies an image format by its magic bytes.
// Supports jpeg, png, gif and webp.
func DetectFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", fmt.Errorf("image data too small")
	}

	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "jpeg", nil
	case bytes.HasPrefix(data, pngMagic):
		return "png", nil
	case bytes.HasPrefix(data, gifMagic):
		return "gif", nil
	case bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], webpMagic):
		return "webp", nil
	default:
		return "", fmt.Errorf("unsupported image format")
	}
}
