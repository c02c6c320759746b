package domain

// RatingSummary aggregates the ratings of a book's reviews.
type RatingSummary struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
	// Counts holds the number of reviews per star value, index 0 = one star.
	Counts [MaxRating]int `json:"counts"`
}

// AverageRating returns the arithmetic mean of the review ratings,
// or 0 when there are no reviews.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// SummarizeRatings computes the full rating breakdown for a review list.
// Out-of-range ratings are ignored in the per-star counts but still
// contribute nothing to the average (they should not exist in the store).
func SummarizeRatings(reviews []*Review) RatingSummary {
	summary := RatingSummary{Total: len(reviews)}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		if r.Rating >= MinRating && r.Rating <= MaxRating {
			summary.Counts[r.Rating-1]++
		}
	}
	if summary.Total > 0 {
		summary.Average = float64(sum) / float64(summary.Total)
	}
	return summary
}
