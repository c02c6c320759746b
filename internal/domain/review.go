package domain

// Rating bounds. Ratings are whole stars.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating and comment on a book.
// AuthorID is immutable after creation.
type Review struct {
	Record
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
}

// ValidRating reports whether the rating is a whole star within bounds.
func (r *Review) ValidRating() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating
}
