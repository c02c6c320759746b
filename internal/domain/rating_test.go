package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reviewsWithRatings(ratings ...int) []*Review {
	reviews := make([]*Review, len(ratings))
	for i, r := range ratings {
		reviews[i] = &Review{Rating: r}
	}
	return reviews
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"no reviews", nil, 0},
		{"single review", []int{4}, 4},
		{"whole average", []int{3, 5}, 4},
		{"fractional average", []int{2, 3}, 2.5},
		{"all ones", []int{1, 1, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageRating(reviewsWithRatings(tt.ratings...))
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestSummarizeRatings(t *testing.T) {
	summary := SummarizeRatings(reviewsWithRatings(5, 5, 3, 1))

	assert.Equal(t, 4, summary.Total)
	assert.InDelta(t, 3.5, summary.Average, 0.0001)
	assert.Equal(t, 1, summary.Counts[0]) // one star
	assert.Equal(t, 1, summary.Counts[2]) // three stars
	assert.Equal(t, 2, summary.Counts[4]) // five stars
}

func TestSummarizeRatings_Empty(t *testing.T) {
	summary := SummarizeRatings(nil)

	assert.Equal(t, 0, summary.Total)
	assert.Zero(t, summary.Average)
}

func TestReview_ValidRating(t *testing.T) {
	tests := []struct {
		rating int
		valid  bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		r := &Review{Rating: tt.rating}
		assert.Equal(t, tt.valid, r.ValidRating(), "rating %d", tt.rating)
	}
}
