// Package main provides a tool to seed the database with demo catalog data.
//
// It creates a few users, books, and reviews so the API has something to
// serve during local development.
//
// Usage:
//
//	DATA_PATH=~/ReviewShelf/data go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/reviewshelf/reviewshelf-server/internal/auth"
	"github.com/reviewshelf/reviewshelf-server/internal/category"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	"github.com/reviewshelf/reviewshelf-server/internal/id"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

var password = flag.String("password", "reviewshelf-demo", "Password for seeded users")

type seedBook struct {
	title       string
	author      string
	description string
	category    string
}

var seedBooks = []seedBook{
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "An envoy alone on a winter planet.", "Sci-Fi"},
	{"The Dispossessed", "Ursula K. Le Guin", "Two worlds divided by a wall.", "Sci-Fi"},
	{"The Name of the Wind", "Patrick Rothfuss", "A legend tells his own story.", "Fantasy"},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "Two systems that drive the way we think.", "Psychology"},
	{"Piranesi", "Susanna Clarke", "A house with infinite halls and a single tide.", "Fantasy"},
}

var seedComments = []string{
	"Could not put it down.",
	"Slow start, strong finish.",
	"The prose alone is worth it.",
	"Not for me, but I see the appeal.",
	"Already rereading it.",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "ReviewShelf", "data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := createUsers(ctx, s)
	books := createBooks(ctx, s, users)
	createReviews(ctx, s, users, books)

	fmt.Printf("Seeded %d users, %d books\n", len(users), len(books))
}

func createUsers(ctx context.Context, s *store.Store) []*domain.User {
	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	names := []struct{ name, email string }{
		{"Ada Reader", "ada@example.com"},
		{"Ben Bookworm", "ben@example.com"},
		{"Cleo Critic", "cleo@example.com"},
	}

	users := make([]*domain.User, 0, len(names))
	for _, n := range names {
		user := &domain.User{
			Record:       domain.Record{ID: id.MustGenerate(id.PrefixUser)},
			Email:        n.email,
			PasswordHash: hash,
			Name:         n.name,
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("Skipping user %s: %v", n.email, err)
			continue
		}
		users = append(users, user)
	}
	return users
}

func createBooks(ctx context.Context, s *store.Store, users []*domain.User) []*domain.Book {
	if len(users) == 0 {
		log.Fatal("No users to own books")
	}

	books := make([]*domain.Book, 0, len(seedBooks))
	for i, sb := range seedBooks {
		book := &domain.Book{
			Record:       domain.Record{ID: id.MustGenerate(id.PrefixBook)},
			Title:        sb.title,
			Author:       sb.author,
			Description:  sb.description,
			Category:     sb.category,
			CategorySlug: category.CanonicalSlug(sb.category),
			OwnerID:      users[i%len(users)].ID,
		}
		book.InitTimestamps()

		if err := s.CreateBook(ctx, book); err != nil {
			log.Printf("Skipping book %q: %v", sb.title, err)
			continue
		}
		books = append(books, book)
	}
	return books
}

func createReviews(ctx context.Context, s *store.Store, users []*domain.User, books []*domain.Book) {
	for _, book := range books {
		for _, user := range users {
			// Owners rarely review their own books, and not everyone
			// reviews everything.
			if user.ID == book.OwnerID || rand.Intn(3) == 0 {
				continue
			}

			review := &domain.Review{
				Record:   domain.Record{ID: id.MustGenerate(id.PrefixReview)},
				BookID:   book.ID,
				AuthorID: user.ID,
				Comment:  seedComments[rand.Intn(len(seedComments))],
				Rating:   domain.MinRating + rand.Intn(domain.MaxRating),
			}
			review.InitTimestamps()

			if err := s.CreateReview(ctx, review); err != nil {
				log.Printf("Skipping review on %q: %v", book.Title, err)
			}
		}
	}
}
