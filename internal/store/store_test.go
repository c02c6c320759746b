package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

// Helper to create a test book.
func createTestBook(id string) *domain.Book {
	now := time.Now()
	return &domain.Book{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:        "The Left Hand of Darkness",
		Author:       "Ursula K. Le Guin",
		Description:  "An envoy on a frozen planet",
		Category:     "Science Fiction",
		CategorySlug: "science-fiction",
		OwnerID:      "user-owner1",
	}
}

// Helper to create a test review bound to a book.
func createTestReview(id, bookID string) *domain.Review {
	now := time.Now()
	return &domain.Review{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookID:   bookID,
		AuthorID: "user-reviewer1",
		Comment:  "Remarkable worldbuilding",
		Rating:   5,
	}
}

// Helper to create a test user.
func createTestUser(id, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Name:         "Test Reader",
	}
}

// Helper to create a test session.
func createTestSession(id, userID, tokenHash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
}
