package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/repository"
	"github.com/nvoropaev/authkeeper/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during user registration or login process
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Password strength policy, defaults applied if zero
	Policy PasswordPolicy
}

// AuthService orchestrates registration and session establishment
type AuthService struct {
	// Stateless codec to issue and verify tokens
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	policy PasswordPolicy

	// Repositories to access long term data
	storage repository.Storage

	// Valid digest of a throwaway password, compared against on login
	// for unknown usernames so both failure paths cost one bcrypt verify
	dummyDigest string
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	dummyDigest, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("can't prepare dummy digest. Err: %w", err)
	}

	return &AuthService{
		token:       token,
		hasher:      hasher,
		policy:      cfg.Policy.withDefaults(),
		storage:     storage,
		dummyDigest: dummyDigest,
	}, nil
}

// AccessTTL is what clients receive as expires_in
func (s *AuthService) AccessTTL() time.Duration {
	return s.token.AccessTTL()
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.token.RefreshTTL()
}

// Register creates the user
// Returned user carries public attributes and the digest, handlers
// must never render the digest out
func (s *AuthService) Register(ctx context.Context, username string, password string) (models.User, error) {
	username = normalizeUsername(username)

	if err := s.policy.Validate(password); err != nil {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, username, hash)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login checks credentials and issues a token pair
// Unknown username and wrong password are indistinguishable on purpose:
// same error, same bcrypt cost on both paths
func (s *AuthService) Login(ctx context.Context, username string, password string, userAgent string) (models.TokenPair, error) {
	username = normalizeUsername(username)

	user, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn a compare anyway to keep the latency profile flat
		_ = s.hasher.Compare(s.dummyDigest, password)
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	default:
		// Store failures must never read as bad credentials
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, apperrors.ErrHashing) {
			return models.TokenPair{}, err
		}
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.ID, userAgent)
}

// Refresh mints a new access token for a valid, not revoked refresh token
// The refresh token itself is not rotated
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	// Signature and expiry first: an expired token is invalid,
	// not revoked, even if its row was revoked too
	claims, err := s.token.Parse(refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}
	if claims.Kind != models.TokenKindRefresh {
		return models.IssuedToken{}, fmt.Errorf("not a refresh token: %w", apperrors.ErrTokenInvalid)
	}

	tokenID := claims.TokenID()

	row, err := s.storage.Refresh().Get(ctx, tokenID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound):
		// Signed with our key but no row: purged or never saved,
		// presented the same as a revoked one
		return models.IssuedToken{}, apperrors.ErrTokenRevoked
	default:
		return models.IssuedToken{}, err
	}
	if !row.IsActive(time.Now()) {
		return models.IssuedToken{}, apperrors.ErrTokenRevoked
	}

	revoked, err := s.storage.Revocation().IsRevoked(ctx, tokenID)
	if err != nil {
		return models.IssuedToken{}, err
	}
	if revoked {
		return models.IssuedToken{}, apperrors.ErrTokenRevoked
	}

	access, err := s.token.Issue(claims.UserID, models.TokenKindAccess)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return access, nil
}

// ChangePassword updates the digest and kills every outstanding session
// Digest update and refresh token revocation run in one transaction:
// a partial failure must not leave tokens valid for the old password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current string, newPassword string) error {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
		if errors.Is(err, apperrors.ErrHashing) {
			return err
		}
		return apperrors.ErrInvalidCredentials
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}
	if newPassword == current {
		return fmt.Errorf("%w: new password equals the current one", apperrors.ErrWeakPassword)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := st.User().UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}

		_, err := st.Refresh().RevokeAllForUser(ctx, userID)
		return err
	})
}

func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID, userAgent string) (models.TokenPair, error) {
	pair, err := s.token.IssuePair(userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	row := models.RefreshToken{
		ID:        pair.Refresh.ID,
		UserID:    userID,
		IssuedAt:  time.Now().Truncate(time.Second),
		ExpiresAt: pair.Refresh.ExpiresAt,
	}
	if userAgent != "" {
		row.UserAgent = &userAgent
	}

	if err := s.storage.Refresh().Save(ctx, row); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}

// Login handles are case-normalized so Alice and alice are one identity
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
