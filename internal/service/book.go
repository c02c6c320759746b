package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reviewshelf/reviewshelf-server/internal/category"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	domainerrors "github.com/reviewshelf/reviewshelf-server/internal/errors"
	"github.com/reviewshelf/reviewshelf-server/internal/id"
	"github.com/reviewshelf/reviewshelf-server/internal/media/covers"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// BookService manages the book catalog.
// Ownership checks live here: only a book's owner may update or delete
// it, regardless of which handler the request came through.
type BookService struct {
	store      *store.Store
	covers     *images.Processor
	downloader *covers.Downloader
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	store *store.Store,
	coverProcessor *images.Processor,
	downloader *covers.Downloader,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:      store,
		covers:     coverProcessor,
		downloader: downloader,
		logger:     logger,
	}
}

// AddBookRequest contains the data for creating a book.
type AddBookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Author      string `json:"author" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"max=100"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
}

// UpdateBookRequest contains a partial book update.
// Nil and empty fields are left unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Author      *string `json:"author" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url"`
}

// ReviewView is a review enriched with its author's public profile.
type ReviewView struct {
	*domain.Review
	Author *domain.Profile `json:"author,omitempty"`
}

// BookView is a book enriched with cover URL, reviews, and rating summary.
type BookView struct {
	*domain.Book
	CoverURL      string        `json:"cover_url,omitempty"`
	AverageRating float64       `json:"average_rating"`
	Reviews       []*ReviewView `json:"reviews"`
}

// AddBook creates a new book owned by the given user.
// When a cover URL is supplied, the cover is fetched and stored before
// the book record is created, so a book never appears without its cover.
func (s *BookService) AddBook(ctx context.Context, ownerID string, req AddBookRequest) (*BookView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Record: domain.Record{
			ID: bookID,
		},
		Title:        req.Title,
		Author:       req.Author,
		Description:  req.Description,
		Category:     req.Category,
		CategorySlug: category.CanonicalSlug(req.Category),
		OwnerID:      ownerID,
	}
	book.InitTimestamps()

	if req.CoverURL != "" {
		info, err := s.downloader.Download(ctx, bookID, req.CoverURL)
		if err != nil {
			return nil, domainerrors.Validation("could not fetch cover image").WithCause(err)
		}
		book.CoverImage = info
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		// Roll back the orphaned cover.
		if book.CoverImage != nil {
			_ = s.covers.Remove(book.CoverImage)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	return s.bookView(ctx, book), nil
}

// GetBook returns a book with its reviews, counting the read as a view.
// The view counter increments exactly once per call.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*BookView, error) {
	book, err := s.store.IncrementViewCount(ctx, bookID)
	if err != nil {
		return nil, err
	}

	return s.bookView(ctx, book), nil
}

// ListBooks returns the whole catalog with reviews populated.
func (s *BookService) ListBooks(ctx context.Context) ([]*BookView, error) {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, err
	}

	return s.bookViews(ctx, books), nil
}

// ListBooksPage returns one page of the catalog without review bodies.
// For clients that page through large catalogs.
func (s *BookService) ListBooksPage(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*BookView], error) {
	page, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	views := make([]*BookView, 0, len(page.Items))
	for _, book := range page.Items {
		views = append(views, s.bookSummary(ctx, book))
	}

	return &store.PaginatedResult[*BookView]{
		Items:      views,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// ListBooksByOwner returns the books a user owns.
func (s *BookService) ListBooksByOwner(ctx context.Context, ownerID string) ([]*BookView, error) {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.bookViews(ctx, books), nil
}

// ListBooksByCategory returns the books in a category.
// The category may be a display name or a slug.
func (s *BookService) ListBooksByCategory(ctx context.Context, rawCategory string) ([]*BookView, error) {
	books, err := s.store.ListBooksByCategory(ctx, category.CanonicalSlug(rawCategory))
	if err != nil {
		return nil, err
	}

	return s.bookViews(ctx, books), nil
}

// BooksByIDs returns full views for the given book IDs in the given
// order. IDs that no longer resolve are skipped, the search index may
// briefly trail the store.
func (s *BookService) BooksByIDs(ctx context.Context, bookIDs []string) ([]*BookView, error) {
	views := make([]*BookView, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if err != nil {
			continue
		}
		views = append(views, s.bookView(ctx, book))
	}
	return views, nil
}

// UpdateBook applies a partial update to a book the user owns.
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*BookView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	// Empty strings count as omitted, so a book never loses its title or
	// author through a patch.
	if req.Title != nil && *req.Title != "" {
		book.Title = *req.Title
	}
	if req.Author != nil && *req.Author != "" {
		book.Author = *req.Author
	}
	if req.Description != nil && *req.Description != "" {
		book.Description = *req.Description
	}
	if req.Category != nil && *req.Category != "" {
		book.Category = *req.Category
		book.CategorySlug = category.CanonicalSlug(*req.Category)
	}

	if req.CoverURL != nil && *req.CoverURL != "" {
		info, err := s.downloader.Download(ctx, bookID, *req.CoverURL)
		if err != nil {
			return nil, domainerrors.Validation("could not fetch cover image").WithCause(err)
		}
		book.CoverImage = info
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return s.bookView(ctx, book), nil
}

// AttachCover stores an uploaded cover image for a book the user owns.
func (s *BookService) AttachCover(ctx context.Context, userID, bookID string, data []byte) (*BookView, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	info, err := s.covers.Process(bookID, data)
	if err != nil {
		return nil, domainerrors.Validation("unsupported or corrupt image").WithCause(err)
	}

	// Replacing a cover with a different format leaves the old file behind.
	if book.CoverImage != nil && book.CoverImage.Filename != info.Filename {
		_ = s.covers.Remove(book.CoverImage)
	}

	book.CoverImage = info
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return s.bookView(ctx, book), nil
}

// DeleteBook removes a book the user owns, cascading to its reviews and
// cover image, and returns the remaining catalog.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) ([]*BookView, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteReviewsForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("delete reviews: %w", err)
	}

	if book.CoverImage != nil {
		if err := s.covers.Remove(book.CoverImage); err != nil {
			s.logger.Warn("failed to remove cover image", "book_id", bookID, "error", err)
		}
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted with reviews",
		"book_id", bookID,
		"user_id", userID,
		"reviews_deleted", deleted,
	)

	return s.ListBooks(ctx)
}

// ownedBook fetches a book and verifies the user owns it.
func (s *BookService) ownedBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.OwnerID != userID {
		return nil, domainerrors.Forbidden("only the book's owner may modify it")
	}

	return book, nil
}

// bookView builds the full view of a book, reviews included.
func (s *BookService) bookView(ctx context.Context, book *domain.Book) *BookView {
	view := s.bookSummary(ctx, book)

	reviews, err := s.store.ListReviewsForBook(ctx, book.ID)
	if err != nil {
		s.logger.Warn("failed to load reviews", "book_id", book.ID, "error", err)
		return view
	}

	view.AverageRating = domain.AverageRating(reviews)
	view.Reviews = s.reviewViews(ctx, reviews)

	return view
}

// bookSummary builds the view of a book without loading review bodies.
func (s *BookService) bookSummary(_ context.Context, book *domain.Book) *BookView {
	view := &BookView{
		Book:    book,
		Reviews: []*ReviewView{},
	}
	if book.CoverImage != nil {
		view.CoverURL = "/covers/" + book.CoverImage.Filename
	}
	return view
}

func (s *BookService) bookViews(ctx context.Context, books []*domain.Book) []*BookView {
	views := make([]*BookView, 0, len(books))
	for _, book := range books {
		views = append(views, s.bookView(ctx, book))
	}
	return views
}

// reviewViews enriches reviews with author profiles.
// Profiles are cached per call, review threads repeat authors.
func (s *BookService) reviewViews(ctx context.Context, reviews []*domain.Review) []*ReviewView {
	profiles := make(map[string]*domain.Profile)
	views := make([]*ReviewView, 0, len(reviews))

	for _, review := range reviews {
		profile, ok := profiles[review.AuthorID]
		if !ok {
			if user, err := s.store.GetUser(ctx, review.AuthorID); err == nil {
				profile = user.AsProfile()
			}
			profiles[review.AuthorID] = profile
		}
		views = append(views, &ReviewView{Review: review, Author: profile})
	}

	return views
}
