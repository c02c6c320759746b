package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	domainerrors "github.com/reviewshelf/reviewshelf-server/internal/errors"
	"github.com/reviewshelf/reviewshelf-server/internal/id"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// ReviewService manages reviews on catalog books.
// Only a review's author may edit or remove it.
type ReviewService struct {
	store  *store.Store
	books  *BookService
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, books *BookService, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		books:  books,
		logger: logger,
	}
}

// AddReviewRequest contains the data for posting a review.
type AddReviewRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// UpdateReviewRequest contains a partial review update.
// Nil fields are left unchanged.
type UpdateReviewRequest struct {
	Comment *string `json:"comment" validate:"omitempty,min=1,max=2000"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// PostedReview is the result of posting a review: the review itself and
// the book's refreshed thread, so clients re-render in one round trip.
type PostedReview struct {
	Review  *ReviewView   `json:"review"`
	Reviews []*ReviewView `json:"reviews"`
}

// AddReview posts a review on a book.
func (s *ReviewService) AddReview(ctx context.Context, authorID, bookID string, req AddReviewRequest) (*PostedReview, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record: domain.Record{
			ID: reviewID,
		},
		BookID:   bookID,
		AuthorID: authorID,
		Comment:  req.Comment,
		Rating:   req.Rating,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review posted",
		"review_id", reviewID,
		"book_id", bookID,
		"author_id", authorID,
		"rating", req.Rating,
	)

	thread, err := s.ListReviews(ctx, bookID)
	if err != nil {
		return nil, err
	}

	posted := &PostedReview{Reviews: thread}
	for _, view := range thread {
		if view.ID == reviewID {
			posted.Review = view
			break
		}
	}

	return posted, nil
}

// GetReview returns a single review with its author's profile.
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*ReviewView, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	views := s.books.reviewViews(ctx, []*domain.Review{review})
	return views[0], nil
}

// UpdateReview edits a review the user authored on the given book.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, bookID, reviewID string, req UpdateReviewRequest) (*ReviewView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	review, err := s.authoredReview(ctx, userID, bookID, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	views := s.books.reviewViews(ctx, []*domain.Review{review})
	return views[0], nil
}

// DeleteReview removes a review the user authored and unlinks it from
// its book.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, bookID, reviewID string) error {
	if _, err := s.authoredReview(ctx, userID, bookID, reviewID); err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("review deleted",
		"review_id", reviewID,
		"book_id", bookID,
		"author_id", userID,
	)

	return nil
}

// ListReviews returns a book's reviews in creation order, authors attached.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string) ([]*ReviewView, error) {
	reviews, err := s.store.ListReviewsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.books.reviewViews(ctx, reviews), nil
}

// authoredReview fetches a review, verifies it belongs to the book, and
// verifies the user wrote it. A review addressed through the wrong book
// is indistinguishable from a missing one.
func (s *ReviewService) authoredReview(ctx context.Context, userID, bookID, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.BookID != bookID {
		return nil, domainerrors.NotFound("review not found")
	}

	if review.AuthorID != userID {
		return nil, domainerrors.Forbidden("only the review's author may modify it")
	}

	return review, nil
}
