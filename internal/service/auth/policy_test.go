package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
)

func Test_PasswordPolicy(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		p := PasswordPolicy{}.withDefaults()

		require.Equal(t, defaultMinPasswordLength, p.MinLength)
		require.Equal(t, defaultMinCharClasses, p.MinClasses)
	})

	t.Run("validate", func(t *testing.T) {
		p := PasswordPolicy{MinLength: 8, MinClasses: 2}

		tests := []struct {
			name     string
			password string
			ok       bool
		}{
			{"strong password", "Str0ng!Pass", true},
			{"two classes exactly", "password1", true},
			{"too short", "aB1!", false},
			{"one class only", "alllowercase", false},
			{"digits only", "12345678", false},
			{"unicode counted by runes", "пароль1Х", true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := p.Validate(tt.password)

				if tt.ok {
					require.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, apperrors.ErrWeakPassword)
			})
		}
	})

	t.Run("stricter class requirement", func(t *testing.T) {
		p := PasswordPolicy{MinLength: 8, MinClasses: 4}

		require.NoError(t, p.Validate("Str0ng!Pass"))
		require.ErrorIs(t, p.Validate("NoDigitsHere!"), apperrors.ErrWeakPassword)
	})
}
