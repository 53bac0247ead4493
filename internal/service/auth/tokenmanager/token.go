package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
)

const (
	defaultAccessTokenTTL  = 1 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

// Claims carried by every issued token
// Kind separates access tokens from refresh tokens: a refresh token
// must never authorize a resource request
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Kind   string    `json:"kind"`
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign token payloads
	// Required to be set and must be high-entropy: leaking it invalidates
	// every outstanding token
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager signs and verifies self-contained tokens
// It is stateless on purpose: revocation is the caller's concern
type TokenManager struct {
	key string
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL is reported to clients as expires_in on login and refresh
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Issue signs a token of the given kind with a fresh random token id
func (m *TokenManager) Issue(userID uuid.UUID, kind string) (models.IssuedToken, error) {
	var ttl time.Duration
	switch kind {
	case models.TokenKindAccess:
		ttl = m.accessTTL
	case models.TokenKindRefresh:
		ttl = m.refreshTTL
	default:
		return models.IssuedToken{}, fmt.Errorf("unknown token kind: %q", kind)
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	id := uuid.New()

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        id.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
			Kind:   kind,
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ID: id, ExpiresAt: expiresAt}, nil
}

// IssuePair mints an access and a refresh token for the user
func (m *TokenManager) IssuePair(userID uuid.UUID) (models.TokenPair, error) {
	access, err := m.Issue(userID, models.TokenKindAccess)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.Issue(userID, models.TokenKindRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse verifies signature and expiry and returns the claims
// Every failure maps to the single apperrors.ErrTokenInvalid: the
// caller must not be able to tell a bad signature from an expired token
func (m *TokenManager) Parse(tokenString string) (Claims, error) {
	return m.parse(tokenString)
}

// ParseLenient verifies the signature but ignores expiry
// Used by logout: revoking an already expired token is still fine
func (m *TokenManager) ParseLenient(tokenString string) (Claims, error) {
	return m.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (m *TokenManager) parse(tokenString string, opts ...jwt.ParserOption) (Claims, error) {
	claims := &Claims{}

	opts = append(opts, jwt.WithValidMethods([]string{m.alg.Alg()}))
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		opts...,
	)
	if err != nil {
		return Claims{}, fmt.Errorf("token rejected (%v): %w", err, apperrors.ErrTokenInvalid)
	}

	// Structural checks: token id, subject and expiry must be present
	// Every token we issue carries them, one without is not ours
	if claims.UserID == uuid.Nil {
		return Claims{}, fmt.Errorf("token without user id: %w", apperrors.ErrTokenInvalid)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return Claims{}, fmt.Errorf("token with malformed id: %w", apperrors.ErrTokenInvalid)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("token without expiry: %w", apperrors.ErrTokenInvalid)
	}

	return *claims, nil
}

// TokenID returns the jti as uuid
// Safe to call on claims returned from Parse: the id is checked there
func (c Claims) TokenID() uuid.UUID {
	return uuid.MustParse(c.ID)
}
