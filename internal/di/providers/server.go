package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/reviewshelf/reviewshelf-server/internal/api"
	"github.com/reviewshelf/reviewshelf-server/internal/config"
	"github.com/reviewshelf/reviewshelf-server/internal/logger"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server, started in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	storages := do.MustInvoke[*ImageStorages](i)
	limiterHandle := do.MustInvoke[*LoginLimiterHandle](i)

	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	reviewService := do.MustInvoke[*service.ReviewService](i)
	userService := do.MustInvoke[*service.UserService](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	handler := api.NewServer(api.Options{
		Store:          storeHandle.Store,
		AuthService:    authService,
		SessionService: sessionService,
		BookService:    bookService,
		ReviewService:  reviewService,
		UserService:    userService,
		SearchService:  searchService,
		CoverStorage:   storages.Covers,
		AvatarStorage:  storages.Avatars,
		LoginLimiter:   limiterHandle.KeyedRateLimiter,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Logger:         log.Logger,
	})

	srv := handler.HTTPServer(":"+cfg.Server.Port, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
