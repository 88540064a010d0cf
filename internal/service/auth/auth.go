package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/service/auth/tokenmanager"
)

const refreshCookieName = "refresh_token"

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign user access token payload
	SecretKey string

	// Hasher used during user registration or login process
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type AuthService struct {
	// Manager to issue token pairs (access and refresh)
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Repository to access long term data
	userRepo repository.UserRepo
}

func NewService(cfg Config, userRepo repository.UserRepo, refreshRepo repository.RefreshTokenRepo) (*AuthService, error) {
	if userRepo == nil || refreshRepo == nil {
		return nil, errors.New("repos must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  cfg.SecretKey,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, refreshRepo)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	return &AuthService{
		token:    tokenManager,
		hasher:   hasher,
		userRepo: userRepo,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (models.TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, username, hash)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.token.UseRefreshToken(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.userRepo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

// Auth authenticates the request with the bearer access token
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	header := r.Header.Get("Authorization")
	access, found := strings.CutPrefix(header, "Bearer ")
	if !found || access == "" {
		return user, errors.New("no bearer token in request")
	}

	userID, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return user, err
	}

	return s.userRepo.GetUserByID(ctx, userID)
}

// SetTokens writes the pair to the response: access in the Authorization
// header, refresh as httpOnly cookie
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set("Authorization", "Bearer "+pair.Access.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/api/user",
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetRefresh reads the refresh token from the request cookie
func (s *AuthService) GetRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("refresh cookie not found. Err: %w", apperrors.ErrRefreshTokenNotFound)
	}

	return cookie.Value, nil
}
