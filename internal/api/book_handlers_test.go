package api

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

func TestListBooks_EmptyCatalogIs404(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/books", registered.AccessToken, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
}

func TestListBooks(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	createBook(t, server, registered.AccessToken, "The Left Hand of Darkness")
	createBook(t, server, registered.AccessToken, "The Dispossessed")

	w := doJSON(t, server, http.MethodGet, "/api/books", registered.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[[]*service.BookView](t, w)
	assert.Len(t, env.Data, 2)
}

func TestAddBookEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	book := createBook(t, server, registered.AccessToken, "The Left Hand of Darkness")

	assert.Equal(t, "The Left Hand of Darkness", book.Title)
	assert.Equal(t, registered.User.ID, book.OwnerID)
	assert.Equal(t, "science-fiction", book.CategorySlug)
}

func TestAddBookEndpoint_MissingTitle(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/books", registered.AccessToken, service.AddBookRequest{
		Author: "Anonymous",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookEndpoint_CountsViews(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")
	book := createBook(t, server, registered.AccessToken, "The Dispossessed")

	w := doJSON(t, server, http.MethodGet, "/api/books/"+book.ID, registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeEnvelope[*service.BookView](t, w)
	assert.Equal(t, int64(1), first.Data.ViewCount)

	w = doJSON(t, server, http.MethodGet, "/api/books/"+book.ID, registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeEnvelope[*service.BookView](t, w)
	assert.Equal(t, int64(2), second.Data.ViewCount)
}

func TestGetBookEndpoint_NotFound(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/books/book-missing", registered.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBookEndpoint_Returns201(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")
	book := createBook(t, server, registered.AccessToken, "The Dispossessed")

	newTitle := "The Dispossessed: An Ambiguous Utopia"
	w := doJSON(t, server, http.MethodPut, "/api/books/"+book.ID, registered.AccessToken, service.UpdateBookRequest{
		Title: &newTitle,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope[*service.BookView](t, w)
	assert.Equal(t, newTitle, env.Data.Title)
}

func TestUpdateBookEndpoint_NonOwnerForbidden(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	other := registerUser(t, server, "other@example.com")
	book := createBook(t, server, owner.AccessToken, "The Dispossessed")

	newTitle := "Hijacked"
	w := doJSON(t, server, http.MethodPut, "/api/books/"+book.ID, other.AccessToken, service.UpdateBookRequest{
		Title: &newTitle,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteBookEndpoint_ReturnsRemaining(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")
	doomed := createBook(t, server, registered.AccessToken, "Doomed Book")
	kept := createBook(t, server, registered.AccessToken, "Kept Book")

	w := doJSON(t, server, http.MethodDelete, "/api/books/"+doomed.ID, registered.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[[]*service.BookView](t, w)
	require.Len(t, env.Data, 1)
	assert.Equal(t, kept.ID, env.Data[0].ID)
}

func TestDeleteBookEndpoint_NonOwnerForbidden(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	other := registerUser(t, server, "other@example.com")
	book := createBook(t, server, owner.AccessToken, "The Dispossessed")

	w := doJSON(t, server, http.MethodDelete, "/api/books/"+book.ID, other.AccessToken, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListMyBooks(t *testing.T) {
	server := setupTestServer(t)
	owner := registerUser(t, server, "owner@example.com")
	other := registerUser(t, server, "other@example.com")

	createBook(t, server, owner.AccessToken, "Mine")
	createBook(t, server, other.AccessToken, "Theirs")

	w := doJSON(t, server, http.MethodGet, "/api/books/my", owner.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[[]*service.BookView](t, w)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Mine", env.Data[0].Title)
}

func TestAddBookEndpoint_MultipartWithCover(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("title", "Piranesi"))
	require.NoError(t, form.WriteField("author", "Susanna Clarke"))
	require.NoError(t, form.WriteField("description", "A house with infinite halls."))
	require.NoError(t, form.WriteField("category", "Fantasy"))

	part, err := form.CreateFormFile("coverImage", "cover.png")
	require.NoError(t, err)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+registered.AccessToken)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope[*service.BookView](t, w)
	assert.Equal(t, "Piranesi", env.Data.Title)
	assert.Equal(t, "fantasy", env.Data.CategorySlug)
	assert.Equal(t, "/covers/"+env.Data.ID+".png", env.Data.CoverURL)
}

func TestUploadCoverEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")
	book := createBook(t, server, registered.AccessToken, "The Dispossessed")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("cover", "cover.png")
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/"+book.ID+"/cover", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+registered.AccessToken)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope[*service.BookView](t, w)
	assert.Equal(t, "/covers/"+book.ID+".png", env.Data.CoverURL)

	// The uploaded cover is now served publicly.
	w2 := doJSON(t, server, http.MethodGet, env.Data.CoverURL, "", nil)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Header().Get("Cache-Control"), "max-age")
}
