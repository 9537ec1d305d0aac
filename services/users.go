package services

import (
	"context"
	"strings"

	"kboard/apperr"
	"kboard/auth"
	"kboard/models"
	"kboard/utilities"
)

// UserService edits the acting user's own profile.
type UserService struct {
	users   UserStore
	hasher  *auth.PasswordHasher
	avatars AvatarStore
}

func NewUserService(users UserStore, hasher *auth.PasswordHasher, avatars AvatarStore) *UserService {
	if avatars == nil {
		avatars = NoAvatars{}
	}
	return &UserService{users: users, hasher: hasher, avatars: avatars}
}

// UpdateUserInput carries optional profile changes; nil fields are left alone.
type UpdateUserInput struct {
	Name  *string
	Photo *models.Upload
}

// Update changes the principal's name and photo. A replaced photo is removed
// from storage after the new one is saved.
func (s *UserService) Update(ctx context.Context, principal models.User, in UpdateUserInput) (*models.User, error) {
	updated := principal
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindBadRequest, "Name cannot be empty")
		}
		updated.Name = name
	}

	oldPhoto := principal.PhotoURL
	if in.Photo != nil {
		url, err := s.avatars.Upload(ctx, *in.Photo)
		if err != nil {
			return nil, err
		}
		updated.PhotoURL = url
	}

	if err := s.users.UpdateUser(ctx, &updated); err != nil {
		if updated.PhotoURL != oldPhoto {
			s.removePhoto(ctx, updated.PhotoURL)
		}
		return nil, storeErr(err, "User", principal.ID)
	}
	if updated.PhotoURL != oldPhoto {
		s.removePhoto(ctx, oldPhoto)
	}
	return &updated, nil
}

// ChangePassword replaces the principal's password hash.
func (s *UserService) ChangePassword(ctx context.Context, principal models.User, password string) error {
	if password == "" {
		return apperr.New(apperr.KindBadRequest, "Password cannot be empty")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, principal.ID, hash); err != nil {
		return storeErr(err, "User", principal.ID)
	}
	utilities.LogInfo("Password changed for user %s", principal.ID)
	return nil
}

func (s *UserService) removePhoto(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.avatars.Remove(ctx, url); err != nil {
		utilities.LogError(err, "Remove avatar")
	}
}
