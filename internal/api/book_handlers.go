package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reviewshelf/reviewshelf-server/internal/category"
	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/search"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// handleListBooks returns the catalog, optionally filtered by full-text
// search and category. An empty unfiltered catalog is reported as 404,
// clients treat it as "nothing here yet" and show their onboarding state.
// Filtered requests that match nothing return an empty list instead.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	searchText := r.URL.Query().Get("search")
	rawCategory := r.URL.Query().Get("category")

	var (
		books []*service.BookView
		err   error
	)
	switch {
	case searchText != "":
		params := search.DefaultParams()
		params.Query = searchText
		if rawCategory != "" {
			params.CategorySlug = category.CanonicalSlug(rawCategory)
		}

		result, serr := s.searchService.Search(r.Context(), params)
		if serr != nil {
			s.logger.Error("catalog search failed", "query", searchText, "error", serr)
			response.InternalError(w, "Search failed", s.logger)
			return
		}

		bookIDs := make([]string, 0, len(result.Hits))
		for _, hit := range result.Hits {
			bookIDs = append(bookIDs, hit.ID)
		}
		books, err = s.bookService.BooksByIDs(r.Context(), bookIDs)
	case rawCategory != "":
		books, err = s.bookService.ListBooksByCategory(r.Context(), rawCategory)
	case r.URL.Query().Has("limit") || r.URL.Query().Has("cursor"):
		page, perr := s.bookService.ListBooksPage(r.Context(), parsePaginationParams(r))
		if perr != nil {
			response.HandleError(w, perr, s.logger)
			return
		}
		response.Success(w, page, s.logger)
		return
	default:
		books, err = s.bookService.ListBooks(r.Context())
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if searchText == "" && rawCategory == "" && len(books) == 0 {
		response.NotFound(w, "No books in the catalog yet", s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleListMyBooks returns the books the authenticated user owns.
func (s *Server) handleListMyBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListBooksByOwner(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a single book with its reviews.
// Each call counts one view.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleAddBook creates a new book owned by the authenticated user.
// Accepts a JSON body, or a multipart form with an optional coverImage
// file field.
func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req service.AddBookRequest
	var coverData []byte

	if isMultipart(r) {
		if err := parseMultipartForm(r); err != nil {
			response.BadRequest(w, "Invalid form data", s.logger)
			return
		}
		req.Title = r.FormValue("title")
		req.Author = r.FormValue("author")
		req.Description = r.FormValue("description")
		req.Category = r.FormValue("category")

		data, err := formImage(r, "coverImage")
		if err != nil {
			response.BadRequest(w, "Invalid image upload", s.logger)
			return
		}
		coverData = data
	} else if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	userID := getUserID(r.Context())

	book, err := s.bookService.AddBook(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if coverData != nil {
		book, err = s.bookService.AttachCover(r.Context(), userID, book.ID, coverData)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
	}

	response.Created(w, book, s.logger)
}

// handleUpdateBook applies a partial update to a book.
// Responds 201, established client contract.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.UpdateBookRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.UpdateBook(r.Context(), getUserID(r.Context()), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleDeleteBook removes a book and returns the remaining catalog,
// so list views refresh without a second round trip.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	remaining, err := s.bookService.DeleteBook(r.Context(), getUserID(r.Context()), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, remaining, s.logger)
}

// handleUploadCover stores an uploaded cover image for a book.
func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	data, err := readImageUpload(r, "cover")
	if err != nil {
		response.BadRequest(w, "Invalid image upload", s.logger)
		return
	}

	book, err := s.bookService.AttachCover(r.Context(), getUserID(r.Context()), id, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}
