package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemporaryPasswordRejectsShortLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{-1, 0, MinTemporaryPasswordLength - 1} {
		_, err := TemporaryPassword(length)
		require.ErrorIs(t, err, ErrPasswordTooShort, "length %d", length)
	}
}

func TestTemporaryPasswordMixesLettersAndDigits(t *testing.T) {
	t.Parallel()

	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		password, err := TemporaryPassword(MinTemporaryPasswordLength)
		require.NoError(t, err)
		require.Len(t, password, MinTemporaryPasswordLength)

		assert.True(t, strings.ContainsAny(password, passwordLetters), "no letter in %q", password)
		assert.True(t, strings.ContainsAny(password, passwordDigits), "no digit in %q", password)
		for _, char := range password {
			assert.True(t, strings.ContainsRune(passwordLetters+passwordDigits, char), "unexpected %q in %q", char, password)
		}
		seen[password] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}
