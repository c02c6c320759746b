// Package search provides full-text book search using Bleve.
// Books are searchable by title, author and description, with exact
// filtering on category slug and owner.
package search

import (
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

// BookDocument is the document structure for the Bleve index.
//
// Author and category are denormalized into the document so a single
// query covers everything a reader would type into the search box.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`

	// Category slug for exact filtering and faceting.
	CategorySlug string `json:"category_slug,omitempty"`

	// Owner for "my books" scoping.
	OwnerID string `json:"owner_id,omitempty"`

	// Numeric fields for sorting.
	ViewCount   int64 `json:"view_count"`
	ReviewCount int   `json:"review_count"`

	// Timestamps for sorting by recency. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"view_count": d.ViewCount,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,

		// Unstemmed copy of the title. The fuzzy and prefix clauses
		// compare raw terms, which never line up with stemmed tokens
		// ("darkness" is indexed as "dark" under the en analyzer).
		"title_simple": d.Title,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if d.OwnerID != "" {
		m["owner_id"] = d.OwnerID
	}
	if d.ReviewCount > 0 {
		m["review_count"] = d.ReviewCount
	}

	return m
}

// BookToDocument converts a domain Book to a BookDocument.
func BookToDocument(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		Description:  book.Description,
		CategorySlug: book.CategorySlug,
		OwnerID:      book.OwnerID,
		ViewCount:    book.ViewCount,
		ReviewCount:  len(book.ReviewIDs),
		CreatedAt:    book.CreatedAt.UnixMilli(),
		UpdatedAt:    book.UpdatedAt.UnixMilli(),
	}
}
