// Package domain contains the core business entities and domain logic for the ReviewShelf catalog.
package domain

// Book represents a book in the community catalog.
type Book struct {
	Record
	CoverImage   *ImageFileInfo `json:"cover_image,omitempty"`
	Title        string         `json:"title"`
	Author       string         `json:"author"`
	Description  string         `json:"description"`
	Category     string         `json:"category,omitempty"`
	CategorySlug string         `json:"category_slug,omitempty"`
	OwnerID      string         `json:"owner_id"`
	ViewCount    int64          `json:"view_count"`
	// ReviewIDs holds the book's reviews in creation order. The store keeps
	// this list in sync when reviews are created or deleted.
	ReviewIDs []string `json:"review_ids,omitempty"`
}

// ImageFileInfo represents a stored image file (cover art, profile images).
type ImageFileInfo struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	BlurHash string `json:"blur_hash,omitempty"`
}

// HasReview reports whether the book references the given review.
func (b *Book) HasReview(reviewID string) bool {
	for _, id := range b.ReviewIDs {
		if id == reviewID {
			return true
		}
	}
	return false
}

// AddReviewRef appends a review reference, preserving creation order.
// Duplicate references are ignored.
func (b *Book) AddReviewRef(reviewID string) {
	if b.HasReview(reviewID) {
		return
	}
	b.ReviewIDs = append(b.ReviewIDs, reviewID)
}

// RemoveReviewRef removes a review reference.
// Returns true if a reference was removed.
func (b *Book) RemoveReviewRef(reviewID string) bool {
	for i, id := range b.ReviewIDs {
		if id == reviewID {
			b.ReviewIDs = append(b.ReviewIDs[:i], b.ReviewIDs[i+1:]...)
			return true
		}
	}
	return false
}
