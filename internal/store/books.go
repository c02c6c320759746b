package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

const (
	bookPrefix           = "book:"
	bookByOwnerPrefix    = "idx:books:owner:"    // For "my books" lookups
	bookByCategoryPrefix = "idx:books:category:" // For category filtering
)

// Book Operations

// CreateBook creates a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	// The existence check runs inside the transaction so two concurrent
	// creates with the same ID cannot both commit.
	err := s.db.Update(func(txn *badger.Txn) error {
		switch _, err := txn.Get(key); {
		case err == nil:
			return ErrBookExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("check book exists: %w", err)
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		ownerKey := []byte(bookByOwnerPrefix + book.OwnerID + ":" + book.ID)
		if err := txn.Set(ownerKey, []byte{}); err != nil {
			return err
		}

		if book.CategorySlug != "" {
			categoryKey := []byte(bookByCategoryPrefix + book.CategorySlug + ":" + book.ID)
			if err := txn.Set(categoryKey, []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrBookExists) {
		return ErrBookExists
	}
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("owner_id", book.OwnerID),
		)
	}

	s.notifyBookIndexed(book)
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book.
// The owner is immutable; attempts to change it fail with ErrInvalidInput.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	// Get old book for index updates.
	oldBook, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}

	if oldBook.OwnerID != book.OwnerID {
		return ErrInvalidInput.WithMessage("book owner cannot be changed")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		book.Touch()
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Move the category index if the category changed.
		if oldBook.CategorySlug != book.CategorySlug {
			if oldBook.CategorySlug != "" {
				oldCategoryKey := []byte(bookByCategoryPrefix + oldBook.CategorySlug + ":" + book.ID)
				if err := txn.Delete(oldCategoryKey); err != nil {
					return err
				}
			}
			if book.CategorySlug != "" {
				newCategoryKey := []byte(bookByCategoryPrefix + book.CategorySlug + ":" + book.ID)
				if err := txn.Set(newCategoryKey, []byte{}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}

	s.notifyBookIndexed(book)
	return nil
}

// IncrementViewCount atomically bumps a book's view counter and returns
// the updated book. The updated_at timestamp is left untouched: viewing
// a book is not an edit.
func (s *Store) IncrementViewCount(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
		if err != nil {
			return err
		}

		book.ViewCount++

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("increment view count: %w", err)
	}

	return &book, nil
}

// DeleteBook deletes a book and its indices.
// Reviews are NOT cascaded here; callers pair this with DeleteReviewsForBook.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(bookPrefix + id)
		if err := txn.Delete(key); err != nil {
			return err
		}

		ownerKey := []byte(bookByOwnerPrefix + book.OwnerID + ":" + id)
		if err := txn.Delete(ownerKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if book.CategorySlug != "" {
			categoryKey := []byte(bookByCategoryPrefix + book.CategorySlug + ":" + id)
			if err := txn.Delete(categoryKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id, "title", book.Title)
	}

	s.notifyBookDeindexed(id)
	return nil
}

// BookExists checks if a book exists by ID.
func (s *Store) BookExists(_ context.Context, id string) (bool, error) {
	key := []byte(bookPrefix + id)
	return s.exists(key)
}

// ListBooks returns a page of books in ID order.
func (s *Store) ListBooks(_ context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error) {
	params.Validate()

	var books []*domain.Book
	var hasMore bool

	prefix := []byte(bookPrefix)

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = params.Limit + 1 // One extra to detect more pages.

		it := txn.NewIterator(opts)
		defer it.Close()

		if startKey != "" {
			it.Seek([]byte(startKey))
			// Skip the cursor key itself, it was returned on the previous page.
			if it.Valid() && string(it.Item().Key()) == startKey {
				it.Next()
			}
		} else {
			it.Seek(prefix)
		}

		count := 0
		for ; it.ValidForPrefix(prefix); it.Next() {
			if count == params.Limit {
				hasMore = true
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}

			count++
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := &PaginatedResult[*domain.Book]{
		Items:   books,
		HasMore: hasMore,
	}

	if hasMore && len(books) > 0 {
		result.NextCursor = EncodeCursor(bookPrefix + books[len(books)-1].ID)
	}

	return result, nil
}

// ListAllBooks returns all books (non-paginated).
// Used for the delete-then-list flow and for rebuilding the search index.
func (s *Store) ListAllBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}

// ListBooksByOwner returns all books owned by a user.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	return s.listBooksByIndex(ctx, bookByOwnerPrefix+ownerID+":")
}

// ListBooksByCategory returns all books with the given category slug.
func (s *Store) ListBooksByCategory(ctx context.Context, categorySlug string) ([]*domain.Book, error) {
	return s.listBooksByIndex(ctx, bookByCategoryPrefix+categorySlug+":")
}

// listBooksByIndex resolves book IDs from an index key prefix.
// Index key format: <indexPrefix><bookID>, value is empty.
func (s *Store) listBooksByIndex(ctx context.Context, indexPrefix string) ([]*domain.Book, error) {
	prefix := []byte(indexPrefix)
	var bookIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // Only keys are needed.

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			bookIDs = append(bookIDs, strings.TrimPrefix(key, indexPrefix))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan book index: %w", err)
	}

	books := make([]*domain.Book, 0, len(bookIDs))
	for _, id := range bookIDs {
		book, err := s.GetBook(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("dangling book index entry", "book_id", id, "error", err)
			}
			continue
		}
		books = append(books, book)
	}

	return books, nil
}
