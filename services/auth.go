package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"kboard/apperr"
	"kboard/auth"
	"kboard/database"
	"kboard/models"
	"kboard/utilities"

	"github.com/google/uuid"
)

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users   UserStore
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	avatars AvatarStore
	now     func() time.Time
}

func NewAuthService(users UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService, avatars AvatarStore) *AuthService {
	if avatars == nil {
		avatars = NoAvatars{}
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, avatars: avatars, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Photo    *models.Upload
}

// NormalizeEmail trims and lower-cases an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.New(apperr.KindBadRequest, "Email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.New(apperr.KindBadRequest, "Invalid email format")
	}
	return nil
}

// Register creates an account. The optional photo is uploaded only after the
// email is known to be free.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" {
		return nil, apperr.New(apperr.KindBadRequest, "Name cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.New(apperr.KindBadRequest, "Password cannot be empty")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.New(apperr.KindBadRequest, "Email already registered.")
	case !errors.Is(err, database.ErrNotFound):
		return nil, apperr.Internal("lookup user by email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	var photoURL string
	if in.Photo != nil {
		if photoURL, err = s.avatars.Upload(ctx, *in.Photo); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PhotoURL:     photoURL,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.discardAvatar(ctx, photoURL)
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.New(apperr.KindBadRequest, "Email already registered.")
		}
		return nil, apperr.Internal("create user", err)
	}

	utilities.LogInfo("Registered user %s", user.ID)
	return user, nil
}

// Login verifies credentials and issues a token for the account's email.
// Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	invalid := apperr.New(apperr.KindInvalidCredentials, "Invalid email or password.")

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, apperr.Internal("lookup user by email", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal("verify password", err)
	}
	if !ok {
		return nil, invalid
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &models.LoginResponse{Token: token, User: user.Response()}, nil
}

func (s *AuthService) discardAvatar(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.avatars.Remove(ctx, url); err != nil {
		utilities.LogError(err, "Remove orphaned avatar")
	}
}
