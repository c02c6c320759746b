package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reviewshelf/reviewshelf-server/internal/errors"
)

func TestUpdateProfile(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")

	newName := "Renamed Reader"
	updated, err := svc.users.UpdateProfile(context.Background(), registered.User.ID, UpdateProfileRequest{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Reader", updated.Name)
	assert.Equal(t, "reader@example.com", updated.Email, "unset fields unchanged")
	assert.Empty(t, updated.PasswordHash)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")
	registerTestUser(t, svc, "taken@example.com")

	takenEmail := "taken@example.com"
	_, err := svc.users.UpdateProfile(context.Background(), registered.User.ID, UpdateProfileRequest{
		Email: &takenEmail,
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeConflict, domainErr.Code)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")

	err := svc.users.ChangePassword(context.Background(), registered.User.ID, ChangePasswordRequest{
		CurrentPassword: "correct horse battery staple",
		NewPassword:     "an even longer passphrase",
	})
	require.NoError(t, err)

	// The registration session died with the old password.
	_, err = svc.auth.RefreshTokens(context.Background(), RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.Error(t, err)

	_, err = svc.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "an even longer passphrase",
	})
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")

	err := svc.users.ChangePassword(context.Background(), registered.User.ID, ChangePasswordRequest{
		CurrentPassword: "not the password",
		NewPassword:     "an even longer passphrase",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
}

func TestSetProfileImage(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")

	updated, err := svc.users.SetProfileImage(context.Background(), registered.User.ID, testPNG(t))
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImage)
	assert.Equal(t, "png", updated.ProfileImage.Format)

	profile, err := svc.users.GetProfile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "/avatars/"+registered.User.ID+".png", profile.ProfileImageURL)

	cleared, err := svc.users.RemoveProfileImage(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfileImage)
}

func TestListUserSessions_StripsTokenHashes(t *testing.T) {
	svc := setupServices(t)
	registered := registerTestUser(t, svc, "reader@example.com")

	// A second device logs in.
	_, err := svc.auth.Login(context.Background(), LoginRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		IPAddress: "203.0.113.9",
		UserAgent: "reviewshelf-android/1.2",
	})
	require.NoError(t, err)

	sessions, err := svc.sessions.ListUserSessions(context.Background(), registered.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.Empty(t, session.RefreshTokenHash)
	}
}
