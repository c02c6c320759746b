// Package covers provides cover image downloading for books whose cover
// is supplied as a URL rather than an upload.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second
)

// Downloader fetches cover images over HTTP and stores them.
type Downloader struct {
	httpClient *http.Client
	processor  *images.Processor
	logger     *slog.Logger
}

// NewDownloader creates a new cover downloader.
func NewDownloader(processor *images.Processor, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		processor: processor,
		logger:    logger,
	}
}

// Download fetches a cover from the URL and stores it for the given book ID.
// The downloaded bytes go through the same validation and BlurHash
// pipeline as direct uploads.
func (d *Downloader) Download(ctx context.Context, bookID, url string) (*domain.ImageFileInfo, error) {
	if url == "" {
		return nil, errors.New("empty cover URL")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	info, err := d.processor.Process(bookID, data)
	if err != nil {
		return nil, fmt.Errorf("process cover: %w", err)
	}

	d.logger.Info("downloaded cover",
		"book_id", bookID,
		"size", info.Size,
		"format", info.Format,
	)

	return info, nil
}
