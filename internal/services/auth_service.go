package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	applog "meetmatch/pkg/log"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
	Age       *int
	Gender    string
	Bio       string
	Interests []string
}

// ProfileUpdate lists the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
	Age       *int
	Gender    *string
	Bio       *string
	Interests []string
}

// AuthService handles registration, credential checks and profile edits.
type AuthService struct {
	userRepo   repositories.UserRepository
	bcryptCost int
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcrypt.DefaultCost,
		log:        applog.WithComponent("auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser hashes the password and stores a new user.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" {
		return nil, validationError("missing_fields", "name, email and password are required")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, conflictError("email_taken", "user with this email already exists", nil)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError("failed to check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		Age:          in.Age,
		Gender:       strings.TrimSpace(in.Gender),
		Bio:          in.Bio,
		Interests:    cleanTags(in.Interests),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflictError("email_taken", "user with this email already exists", err)
		}
		return nil, internalError("failed to register user", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Authenticate checks the credentials and returns the matching user. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, validationError("missing_fields", "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, internalError("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return user, nil
}

func invalidCredentials() error {
	return &Error{Kind: KindUnauthenticated, Code: "invalid_credentials", Message: "invalid credentials"}
}

// GetProfile returns the public profile of id.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProfile(user), nil
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Profile, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, validationError("invalid_name", "name cannot be empty")
		}
		user.Name = name
	}
	if upd.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.Age != nil {
		user.Age = upd.Age
	}
	if upd.Gender != nil {
		user.Gender = strings.TrimSpace(*upd.Gender)
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Interests != nil {
		user.Interests = cleanTags(upd.Interests)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, internalError("failed to update profile", err)
	}
	return NewProfile(user), nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return validationError("missing_fields", "current and new password are required")
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return invalidCredentials()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return internalError("failed to hash password", err)
	}
	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internalError("failed to change password", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("Password changed")
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("user_not_found", "user not found")
		}
		return nil, internalError("failed to load user", err)
	}
	return user, nil
}

// cleanTags trims tags and drops empty and repeated entries.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
