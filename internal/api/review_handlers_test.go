package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

func TestAddReviewEndpoint_ReturnsThread(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	reviewer := registerUser(t, server, "reviewer@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")

	w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", reviewer.AccessToken, service.AddReviewRequest{
		Comment: "Genly Ai's journey stayed with me for weeks.",
		Rating:  5,
	})

	// Posting returns the created review and the refreshed thread with a
	// plain 200.
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*service.PostedReview](t, w)
	require.NotNil(t, env.Data.Review)
	assert.Equal(t, 5, env.Data.Review.Rating)
	require.Len(t, env.Data.Reviews, 1)
	require.NotNil(t, env.Data.Reviews[0].Author)
	assert.Equal(t, reviewer.User.ID, env.Data.Reviews[0].Author.ID)
}

func TestAddReviewEndpoint_InvalidRating(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")

	w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", owner.AccessToken, service.AddReviewRequest{
		Comment: "Off the scale.",
		Rating:  6,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddReviewEndpoint_BookNotFound(t *testing.T) {
	server := setupTestServer(t)
	reviewer := registerUser(t, server, "reviewer@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/books/book-missing/reviews", reviewer.AccessToken, service.AddReviewRequest{
		Comment: "Reviewing the void.",
		Rating:  3,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReviewEndpoint_AuthorOnly(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	reviewer := registerUser(t, server, "reviewer@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")

	w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", reviewer.AccessToken, service.AddReviewRequest{
		Comment: "First impressions.",
		Rating:  3,
	})
	require.Equal(t, http.StatusOK, w.Code)
	posted := decodeEnvelope[*service.PostedReview](t, w)
	reviewPath := "/api/books/" + book.ID + "/reviews/" + posted.Data.Review.ID

	newRating := 5
	w = doJSON(t, server, http.MethodPut, reviewPath, owner.AccessToken, service.UpdateReviewRequest{
		Rating: &newRating,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, server, http.MethodPut, reviewPath, reviewer.AccessToken, service.UpdateReviewRequest{
		Rating: &newRating,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*service.ReviewView](t, w)
	assert.Equal(t, 5, env.Data.Rating)
}

func TestUpdateReviewEndpoint_WrongBook(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")
	other := createBook(t, server, owner.AccessToken, "The Dispossessed")

	w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", owner.AccessToken, service.AddReviewRequest{
		Comment: "Filed under the right book.",
		Rating:  4,
	})
	require.Equal(t, http.StatusOK, w.Code)
	posted := decodeEnvelope[*service.PostedReview](t, w)

	newRating := 1
	w = doJSON(t, server, http.MethodPut, "/api/books/"+other.ID+"/reviews/"+posted.Data.Review.ID, owner.AccessToken, service.UpdateReviewRequest{
		Rating: &newRating,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteReviewEndpoint_Returns201(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")

	w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", owner.AccessToken, service.AddReviewRequest{
		Comment: "Soon to be retracted.",
		Rating:  2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	posted := decodeEnvelope[*service.PostedReview](t, w)

	w = doJSON(t, server, http.MethodDelete, "/api/books/"+book.ID+"/reviews/"+posted.Data.Review.ID, owner.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/books/"+book.ID+"/reviews", owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	remaining := decodeEnvelope[[]*service.ReviewView](t, w)
	assert.Empty(t, remaining.Data)
}

func TestGetBookEndpoint_AverageRating(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	reviewer := registerUser(t, server, "reviewer@example.com")
	book := createBook(t, server, owner.AccessToken, "The Left Hand of Darkness")

	for _, post := range []struct {
		token  string
		rating int
	}{
		{owner.AccessToken, 4},
		{reviewer.AccessToken, 5},
	} {
		w := doJSON(t, server, http.MethodPost, "/api/books/"+book.ID+"/reviews", post.token, service.AddReviewRequest{
			Comment: "Starred.",
			Rating:  post.rating,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, server, http.MethodGet, "/api/books/"+book.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*service.BookView](t, w)
	assert.InDelta(t, 4.5, env.Data.AverageRating, 0.0001)
	assert.Len(t, env.Data.Reviews, 2)
}
