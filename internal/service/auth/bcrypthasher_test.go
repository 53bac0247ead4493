package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: bcrypt.MinCost}

	t.Run("hash and compare round trip", func(t *testing.T) {
		digest, err := h.Hash("password")
		require.NoError(t, err)
		require.NotEqual(t, "password", digest)

		require.NoError(t, h.Compare(digest, "password"))
	})

	t.Run("wrong password", func(t *testing.T) {
		digest, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(digest, "other")
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrHashing, "mismatch is not a hashing failure")
	})

	t.Run("same password different digests", func(t *testing.T) {
		first, err := h.Hash("password")
		require.NoError(t, err)
		second, err := h.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "salts should differ")
	})

	t.Run("long passwords supported", func(t *testing.T) {
		// Over bcrypt's 72 byte limit, sha256 prehash handles it
		long := make([]byte, 100)
		for i := range long {
			long[i] = 'a'
		}

		digest, err := h.Hash(string(long))
		require.NoError(t, err)
		require.NoError(t, h.Compare(digest, string(long)))
	})

	t.Run("malformed digest", func(t *testing.T) {
		err := h.Compare("not-a-bcrypt-digest", "password")
		require.ErrorIs(t, err, apperrors.ErrHashing)
	})

	t.Run("zero cost falls back to default", func(t *testing.T) {
		digest, err := BcryptHasher{}.Hash("password")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(digest))
		require.NoError(t, err)
		require.Equal(t, bcrypt.DefaultCost, cost)
	})
}
