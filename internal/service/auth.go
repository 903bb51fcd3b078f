package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/storyweave/storyweave-api/internal/crypto"
	"github.com/storyweave/storyweave-api/internal/model"
	"github.com/storyweave/storyweave-api/internal/provider"
	"github.com/storyweave/storyweave-api/internal/ratelimit"
	"github.com/storyweave/storyweave-api/internal/repository"
)

var (
	// ErrInvalidCredentials deliberately collapses "user not found" and
	// "wrong password" so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var languageRegexp = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,8})?$`)

// ValidationError reports malformed input. The detail is safe to return
// to the client.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// RateLimitError reports a denied admission and how long the caller must
// wait before retrying.
type RateLimitError struct {
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %d seconds", e.RetryAfter)
}

// UserStore is the persistence surface the auth service needs. Implemented
// by repository.UserRepository; tests substitute an in-memory store.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePreferences(ctx context.Context, id int64, provider, language string) error
}

// AuthService handles registration and authentication. Each request moves
// through validation, rate admission, persistence and token issuance; a
// failure at any stage leaves no partial state behind.
type AuthService struct {
	store     UserStore
	providers *provider.Registry
	limiter   *ratelimit.Limiter
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, providers *provider.Registry, limiter *ratelimit.Limiter, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		providers: providers,
		limiter:   limiter,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns a session token.
// clientKey identifies the caller for rate limiting (normalized client
// address); the admission check runs before any persistence, so a denied
// or invalid attempt never creates a record.
func (s *AuthService) Register(ctx context.Context, clientKey string, req model.RegisterRequest) (model.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	if err := validateRegistration(email, req); err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.admit(clientKey, email); err != nil {
		return model.AuthResponse{}, err
	}

	cred, err := s.providers.Resolve(req.PreferredProvider)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("resolving provider: %w", err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hashing password: %w", err)
	}

	language := req.PreferredLanguage
	if language == "" {
		language = "en"
	}

	user := &model.User{
		Email:             email,
		AuthHash:          hash,
		PreferredProvider: cred.ID(),
		PreferredLanguage: language,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
	}, nil
}

// Login authenticates a user and returns a fresh session token. Failed
// attempts count against the same rate-limit key as registrations.
func (s *AuthService) Login(ctx context.Context, clientKey string, req model.LoginRequest) (model.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if err := s.admit(clientKey, email); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.AuthHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
	}, nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// UpdatePreferences updates a user's preferred provider and output
// language. A requested provider goes through the same default fallback
// as registration; empty fields keep their current values.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID int64, req model.UpdatePreferencesRequest) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}

	providerID := user.PreferredProvider
	if req.PreferredProvider != "" {
		cred, err := s.providers.Resolve(req.PreferredProvider)
		if err != nil {
			return model.UserResponse{}, fmt.Errorf("resolving provider: %w", err)
		}
		providerID = cred.ID()
	}

	language := user.PreferredLanguage
	if req.PreferredLanguage != "" {
		if !languageRegexp.MatchString(req.PreferredLanguage) {
			return model.UserResponse{}, &ValidationError{Detail: "invalid preferred_language"}
		}
		language = req.PreferredLanguage
	}

	if err := s.store.UpdatePreferences(ctx, userID, providerID, language); err != nil {
		return model.UserResponse{}, err
	}

	user.PreferredProvider = providerID
	user.PreferredLanguage = language
	return toUserResponse(user), nil
}

// admit runs the rate-limit check. The client key is preferred; the
// normalized email serves as a fallback identity when the transport
// cannot supply one.
func (s *AuthService) admit(clientKey, email string) error {
	key := clientKey
	if key == "" {
		key = email
	}
	if d := s.limiter.Admit(key); !d.Allowed {
		return &RateLimitError{RetryAfter: d.RetryAfterSeconds()}
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address so uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email string, req model.RegisterRequest) error {
	if email == "" {
		return &ValidationError{Detail: "email is required"}
	}
	if !emailRegexp.MatchString(email) {
		return &ValidationError{Detail: "invalid email format"}
	}
	if req.Password == "" {
		return &ValidationError{Detail: "password is required"}
	}
	if err := crypto.CheckPasswordPolicy(req.Password); err != nil {
		return &ValidationError{Detail: err.Error()}
	}
	if req.PreferredLanguage != "" && !languageRegexp.MatchString(req.PreferredLanguage) {
		return &ValidationError{Detail: "invalid preferred_language"}
	}
	return nil
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		PreferredProvider: user.PreferredProvider,
		PreferredLanguage: user.PreferredLanguage,
		CreatedAt:         user.CreatedAt,
	}
}
