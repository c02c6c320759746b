package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

const reviewPrefix = "review:"

// Review Operations
//
// Reviews hang off books: each book carries the ordered list of its review
// IDs, so creation and deletion update both records in one transaction.

// CreateReview creates a review and appends its ID to the parent book.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	reviewKey := []byte(reviewPrefix + review.ID)
	bookKey := []byte(bookPrefix + review.BookID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(reviewKey)
		if err == nil {
			return ErrReviewExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		item, err := txn.Get(bookKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		var book domain.Book
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
		if err != nil {
			return err
		}

		book.AddReviewRef(review.ID)

		reviewData, err := json.Marshal(review)
		if err != nil {
			return fmt.Errorf("marshal review: %w", err)
		}
		bookData, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(reviewKey, reviewData); err != nil {
			return err
		}
		return txn.Set(bookKey, bookData)
	})
	if err != nil {
		var storeErr *Error
		if errors.As(err, &storeErr) {
			return storeErr
		}
		return fmt.Errorf("create review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review created",
			"id", review.ID,
			"book_id", review.BookID,
			"rating", review.Rating,
		)
	}

	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(_ context.Context, id string) (*domain.Review, error) {
	key := []byte(reviewPrefix + id)

	var review domain.Review
	if err := s.get(key, &review); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// UpdateReview updates a review's comment and rating.
// The author and book bindings are immutable.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	old, err := s.GetReview(ctx, review.ID)
	if err != nil {
		return err
	}

	if old.AuthorID != review.AuthorID {
		return ErrInvalidInput.WithMessage("review author cannot be changed")
	}
	if old.BookID != review.BookID {
		return ErrInvalidInput.WithMessage("review cannot be moved to another book")
	}

	review.Touch()
	if err := s.set([]byte(reviewPrefix+review.ID), review); err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review updated", "id", review.ID, "book_id", review.BookID)
	}

	return nil
}

// DeleteReview deletes a review and removes its ID from the parent book.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(reviewPrefix + id)); err != nil {
			return err
		}

		bookKey := []byte(bookPrefix + review.BookID)
		item, err := txn.Get(bookKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Book already gone, nothing to unlink.
			return nil
		}
		if err != nil {
			return err
		}

		var book domain.Book
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
		if err != nil {
			return err
		}

		if !book.RemoveReviewRef(id) {
			return nil
		}

		bookData, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(bookKey, bookData)
	})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review deleted", "id", id, "book_id", review.BookID)
	}

	return nil
}

// ListReviewsForBook returns a book's reviews in creation order.
// The order comes from the book's review ID list. Dangling IDs are
// skipped with a warning rather than failing the whole listing.
func (s *Store) ListReviewsForBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, 0, len(book.ReviewIDs))
	for _, reviewID := range book.ReviewIDs {
		review, err := s.GetReview(ctx, reviewID)
		if err != nil {
			if errors.Is(err, ErrReviewNotFound) {
				if s.logger != nil {
					s.logger.Warn("dangling review reference", "book_id", bookID, "review_id", reviewID)
				}
				continue
			}
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

// DeleteReviewsForBook deletes every review attached to a book.
// Called as part of book deletion; returns how many reviews were removed.
func (s *Store) DeleteReviewsForBook(ctx context.Context, bookID string) (int, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, reviewID := range book.ReviewIDs {
			err := txn.Delete([]byte(reviewPrefix + reviewID))
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete reviews for book: %w", err)
	}

	if s.logger != nil && deleted > 0 {
		s.logger.Info("reviews deleted with book", "book_id", bookID, "count", deleted)
	}

	return deleted, nil
}
