package api

import (
	"encoding/json/v2"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	return json.UnmarshalRead(r.Body, dst)
}

// readImageUpload extracts the uploaded image from a multipart form.
// Accepts the file under the given field name, capped at maxImageUploadSize.
func readImageUpload(r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxImageUploadSize)

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		return nil, err
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	return io.ReadAll(file)
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipartForm parses the request's multipart form, capped at
// maxImageUploadSize.
func parseMultipartForm(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxImageUploadSize)
	return r.ParseMultipartForm(maxImageUploadSize)
}

// formImage reads an optional file field from a parsed multipart form.
// A missing file yields nil bytes and no error.
func formImage(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	return io.ReadAll(file)
}

// parsePaginationParams parses limit and cursor from the query string.
func parsePaginationParams(r *http.Request) store.PaginationParams {
	params := store.DefaultPaginationParams()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}

	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		params.Cursor = cursor
	}

	params.Validate()

	return params
}
