package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/reviewshelf/reviewshelf-server/internal/config"
	"github.com/reviewshelf/reviewshelf-server/internal/logger"
	"github.com/reviewshelf/reviewshelf-server/internal/media/covers"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
)

// ImageStorages groups the image storage services.
type ImageStorages struct {
	Covers  *images.Storage
	Avatars *images.Storage
}

// ProvideImageStorages provides the image storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	coverStorage, err := images.NewStorage(cfg.ImagesPath())
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	avatars, err := images.NewStorageWithSubdir(cfg.ImagesPath(), "avatars")
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Image storages initialized", "path", cfg.ImagesPath())

	return &ImageStorages{
		Covers:  coverStorage,
		Avatars: avatars,
	}, nil
}

// ImageProcessors groups the image processing pipelines.
type ImageProcessors struct {
	Covers  *images.Processor
	Avatars *images.Processor
}

// ProvideImageProcessors provides the image processors for covers and avatars.
func ProvideImageProcessors(i do.Injector) (*ImageProcessors, error) {
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &ImageProcessors{
		Covers:  images.NewProcessor(storages.Covers, log.Logger),
		Avatars: images.NewProcessor(storages.Avatars, log.Logger),
	}, nil
}

// ProvideCoverDownloader provides the cover-by-URL downloader.
func ProvideCoverDownloader(i do.Injector) (*covers.Downloader, error) {
	processors := do.MustInvoke[*ImageProcessors](i)
	log := do.MustInvoke[*logger.Logger](i)

	return covers.NewDownloader(processors.Covers, log.Logger), nil
}
