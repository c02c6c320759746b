package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewshelf/reviewshelf-server/internal/auth"
	"github.com/reviewshelf/reviewshelf-server/internal/media/covers"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

const testTokenKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// testServices bundles everything the service tests need.
type testServices struct {
	store    *store.Store
	auth     *AuthService
	sessions *SessionService
	books    *BookService
	reviews  *ReviewService
	users    *UserService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	st.SetSearchIndexer(store.NewNoopSearchIndexer())

	key, err := hex.DecodeString(testTokenKeyHex)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	mediaPath := t.TempDir()
	coverStorage, err := images.NewStorage(mediaPath)
	require.NoError(t, err)
	coverProcessor := images.NewProcessor(coverStorage, logger)

	avatarStorage, err := images.NewStorageWithSubdir(mediaPath, "avatars")
	require.NoError(t, err)
	avatarProcessor := images.NewProcessor(avatarStorage, logger)

	downloader := covers.NewDownloader(coverProcessor, logger)

	sessions := NewSessionService(st, tokenService, logger)
	authSvc := NewAuthService(st, tokenService, sessions, logger)
	books := NewBookService(st, coverProcessor, downloader, logger)
	reviews := NewReviewService(st, books, logger)
	users := NewUserService(st, avatarProcessor, sessions, logger)

	return &testServices{
		store:    st,
		auth:     authSvc,
		sessions: sessions,
		books:    books,
		reviews:  reviews,
		users:    users,
	}
}

// registerTestUser creates an account and returns the auth response.
func registerTestUser(t *testing.T, svc *testServices, email string) *AuthResponse {
	t.Helper()

	resp, err := svc.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct horse battery staple",
		Name:     "Test Reader",
	})
	require.NoError(t, err)
	return resp
}

// addTestBook creates a book owned by the given user.
func addTestBook(t *testing.T, svc *testServices, ownerID, title string) *BookView {
	t.Helper()

	book, err := svc.books.AddBook(context.Background(), ownerID, AddBookRequest{
		Title:       title,
		Author:      "Ursula K. Le Guin",
		Description: "An envoy alone on a winter planet.",
		Category:    "Sci-Fi",
	})
	require.NoError(t, err)
	return book
}
