package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// handleListReviews returns a book's reviews in creation order.
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	reviews, err := s.reviewService.ListReviews(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, reviews, s.logger)
}

// handleAddReview posts a review and returns it together with the book's
// refreshed review thread, so clients re-render it in one round trip.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.AddReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	posted, err := s.reviewService.AddReview(r.Context(), getUserID(r.Context()), bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, posted, s.logger)
}

// handleUpdateReview edits a review the user authored.
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	reviewID := chi.URLParam(r, "reviewID")
	if bookID == "" || reviewID == "" {
		response.BadRequest(w, "Book and review IDs are required", s.logger)
		return
	}

	var req service.UpdateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.UpdateReview(r.Context(), getUserID(r.Context()), bookID, reviewID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleDeleteReview removes a review the user authored.
// Responds 201, established client contract.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	reviewID := chi.URLParam(r, "reviewID")
	if bookID == "" || reviewID == "" {
		response.BadRequest(w, "Book and review IDs are required", s.logger)
		return
	}

	if err := s.reviewService.DeleteReview(r.Context(), getUserID(r.Context()), bookID, reviewID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSONMessage(w, http.StatusCreated, nil, "Review deleted", s.logger)
}
