package api

import (
	"net/http"

	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// handleGetCurrentUser returns the authenticated user's account.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetUser(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleUpdateProfile applies a partial update to the user's account.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleChangePassword sets a new password and revokes other sessions.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.userService.ChangePassword(r.Context(), getUserID(r.Context()), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSONMessage(w, http.StatusOK, nil, "Password changed", s.logger)
}

// handleUploadAvatar stores an uploaded profile image.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	data, err := readImageUpload(r, "avatar")
	if err != nil {
		response.BadRequest(w, "Invalid image upload", s.logger)
		return
	}

	user, err := s.userService.SetProfileImage(r.Context(), getUserID(r.Context()), data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleRemoveAvatar deletes the user's profile image.
func (s *Server) handleRemoveAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.RemoveProfileImage(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleListSessions returns the user's active sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessionService.ListUserSessions(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, sessions, s.logger)
}
