package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/db"
	"github.com/jacinta25/social-media-API/internal/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// dummyHash is compared against when the username does not exist so a failed
// login costs the same either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type Service struct {
	secret     []byte
	db         db.Querier
	users      *identity.Store
	throttle   *Throttle
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type Option func(*Service)

func WithTokenTTL(access, refresh time.Duration) Option {
	return func(s *Service) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

func WithThrottle(t *Throttle) Option {
	return func(s *Service) {
		s.throttle = t
	}
}

func NewService(secret string, q db.Querier, opts ...Option) *Service {
	s := &Service{
		secret:     []byte(secret),
		db:         q,
		users:      identity.NewStore(q),
		accessTTL:  defaultAccessTokenTTL,
		refreshTTL: defaultRefreshTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates the user and its first refresh token in one transaction,
// so a failed token save does not leave the username taken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (identity.User, TokenResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return identity.User{}, TokenResponse{}, err
	}

	var (
		user   identity.User
		tokens TokenResponse
	)
	err = db.WithTx(ctx, s.db, func(tx db.Querier) error {
		created, err := identity.NewStore(tx).Create(ctx, identity.User{
			Username:       req.Username,
			PasswordHash:   hash,
			Bio:            req.Bio,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			return err
		}
		issued, err := s.issueTokens(ctx, tx, created.ID)
		if err != nil {
			return err
		}
		user, tokens = created, issued
		return nil
	})
	if err != nil {
		return identity.User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

// Login checks the credentials and issues a token pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (identity.User, TokenResponse, error) {
	if !s.throttle.Attempt(ctx, req.Username) {
		return identity.User{}, TokenResponse{}, apperror.RateLimited("Too many failed login attempts. Try again later.")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return identity.User{}, TokenResponse{}, err
	}
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return identity.User{}, TokenResponse{}, apperror.InvalidCredentials()
	}
	if !VerifyPassword(user.PasswordHash, req.Password) {
		return identity.User{}, TokenResponse{}, apperror.InvalidCredentials()
	}
	s.throttle.Reset(ctx, req.Username)

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return identity.User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

// GenerateTokens signs an access token and a refresh token for userID and
// persists the refresh token.
func (s *Service) GenerateTokens(ctx context.Context, userID string) (TokenResponse, error) {
	return s.issueTokens(ctx, s.db, userID)
}

func (s *Service) issueTokens(ctx context.Context, q db.Querier, userID string) (TokenResponse, error) {
	access, err := s.signToken(userID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(userID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := saveRefreshToken(ctx, q, refresh, userID, s.refreshTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		Token:        access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked, so each refresh token works once.
func (s *Service) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	claims, err := parseClaims(s.secret, token, tokenTypeRefresh)
	if err != nil {
		return TokenResponse{}, err
	}

	userID, err := s.revokeRefreshToken(ctx, token)
	if err != nil {
		return TokenResponse{}, err
	}
	if userID != claims.UserID {
		return TokenResponse{}, apperror.Unauthorized("refresh token invalid")
	}
	return s.GenerateTokens(ctx, userID)
}

// ResolveToken returns the user id carried by a valid access token.
func (s *Service) ResolveToken(token string) (string, error) {
	claims, err := parseClaims(s.secret, token, tokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) signToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parseClaims(secret []byte, token, tokenType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("token expired")
		}
		return nil, apperror.Unauthorized("token invalid")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Type != tokenType || claims.UserID == "" {
		return nil, apperror.Unauthorized("token invalid")
	}
	return claims, nil
}

func saveRefreshToken(ctx context.Context, q db.Querier, token, userID string, ttl time.Duration) error {
	_, err := q.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *Service) revokeRefreshToken(ctx context.Context, token string) (string, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()
		RETURNING user_id
	`, token)
	var userID string
	if err := row.Scan(&userID); err != nil {
		if db.IsNoRows(err) {
			return "", apperror.Unauthorized("refresh token invalid")
		}
		return "", fmt.Errorf("revoke refresh token: %w", err)
	}
	return userID, nil
}
