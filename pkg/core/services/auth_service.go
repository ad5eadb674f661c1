package services

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

const (
	minUsernameLength = 4
	minPasswordLength = 6

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type tokenClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo       ports.UserRepository
	notifier   ports.Notifier
	log        zerolog.Logger
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(repo ports.UserRepository, notifier ports.Notifier, log zerolog.Logger, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		notifier:   notifier,
		log:        log,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register validates the payload, rejects taken usernames and emails, hashes
// the password and stores the account. The welcome mail goes out in the
// background; registration never waits on the mail server.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if len(password) < minPasswordLength {
		return nil, &domain.FieldError{Field: "password", Message: "Password is too short!"}
	}
	if len(username) < minUsernameLength {
		return nil, &domain.FieldError{Field: "username", Message: "Username is too short!"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &domain.FieldError{Field: "email", Message: "Please enter a valid email address"}
	}

	if existing, err := s.repo.GetUserByEmail(ctx, email); err != nil && !domain.IsNotFound(err) {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: email", domain.ErrConflict)
	}
	if existing, err := s.repo.GetUserByUsername(ctx, username); err != nil && !domain.IsNotFound(err) {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	go func() {
		// Request context dies with the response; the mail should not.
		body := fmt.Sprintf("Hi %s,\n\nyour bookmarks account is ready.\n", user.Username)
		if err := s.notifier.Notify(context.Background(), "Welcome to Bookmarks", []string{user.Email}, body); err != nil {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("welcome mail failed")
		}
	}()

	return user, nil
}

// Login verifies credentials and hands out an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	access, err := s.signToken(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.signToken(user.ID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	return &ports.TokenPair{Access: access, Refresh: refresh}, user, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	// The account may have vanished since the token was issued.
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if domain.IsNotFound(err) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	return s.signToken(userID, tokenTypeAccess, s.accessTTL)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// OAuthLogin signs in an account matched by email from a trusted identity
// provider. Accounts are never auto-created here; there is no password to
// store for them.
func (s *AuthService) OAuthLogin(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	return s.signToken(user.ID, tokenTypeAccess, s.accessTTL)
}

func (s *AuthService) VerifyAccessToken(token string) (int64, error) {
	return s.parseToken(token, tokenTypeAccess)
}

func (s *AuthService) signToken(userID int64, tokenType string, ttl time.Duration) (string, error) {
	claims := &tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parseToken(tokenString, wantType string) (int64, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidCredentials
	}
	if claims.TokenType != wantType {
		return 0, domain.ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidCredentials
	}
	return userID, nil
}

var _ ports.AuthService = (*AuthService)(nil)
