package api

import (
	"net/http"

	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// handleRegister creates a new user account and logs it in.
// Accepts a JSON body, or a multipart form with an optional profileImage
// file field.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	var avatarData []byte

	if isMultipart(r) {
		if err := parseMultipartForm(r); err != nil {
			response.BadRequest(w, "Invalid form data", s.logger)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		data, err := formImage(r, "profileImage")
		if err != nil {
			response.BadRequest(w, "Invalid image upload", s.logger)
			return
		}
		avatarData = data
	} else if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if avatarData != nil {
		user, err := s.userService.SetProfileImage(r.Context(), resp.User.ID, avatarData)
		if err != nil {
			// The account exists either way; report the image failure.
			response.HandleError(w, err, s.logger)
			return
		}
		resp.User = user.Sanitized()
	}

	response.Created(w, resp, s.logger)
}

// handleLogin authenticates a user and issues tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	req.IPAddress = clientIP(r)
	req.UserAgent = r.UserAgent()

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRefresh exchanges a refresh token for new tokens.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	req.IPAddress = clientIP(r)

	resp, err := s.authService.RefreshTokens(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleLogout revokes the session holding the presented refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req service.LogoutRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSONMessage(w, http.StatusOK, nil, "Logged out", s.logger)
}
