package auth_test

import (
	"regexp"
	"strings"
	"testing"

	auth "github.com/baseplatform/go-admin-auth"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsAny(s, chars string) bool {
	return strings.ContainsAny(s, chars)
}

func TestGenerateSecurePassword(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantLength int
		wantErr    bool
	}{
		{
			name:       "Zero length uses default",
			length:     0,
			wantLength: auth.DefaultPasswordLength,
		},
		{
			name:       "Minimum viable length",
			length:     4,
			wantLength: 4,
		},
		{
			name:       "Long password",
			length:     64,
			wantLength: 64,
		},
		{
			name:    "Too short for all classes",
			length:  3,
			wantErr: true,
		},
		{
			name:    "Negative length",
			length:  -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password, err := auth.GenerateSecurePassword(tt.length)

			if tt.wantErr {
				require.Error(t, err)

				var richErr *errors.Error
				require.ErrorAs(t, err, &richErr)
				assert.Equal(t, errors.CategoryBadInput, richErr.Category)
				return
			}

			require.NoError(t, err)
			assert.Len(t, password, tt.wantLength)

			assert.True(t, containsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"), "missing uppercase: %q", password)
			assert.True(t, containsAny(password, "abcdefghijklmnopqrstuvwxyz"), "missing lowercase: %q", password)
			assert.True(t, containsAny(password, "0123456789"), "missing digit: %q", password)
			assert.True(t, containsAny(password, "!@#$%^&*()-_=+[]{}<>?"), "missing symbol: %q", password)
		})
	}
}

func TestGenerateSecurePasswordIsNotDeterministic(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		password, err := auth.GenerateSecurePassword(16)
		require.NoError(t, err)
		assert.False(t, seen[password], "generated the same password twice: %q", password)
		seen[password] = true
	}
}

func TestGenerateMemorablePassword(t *testing.T) {
	// word + word + three digits + one symbol
	shape := regexp.MustCompile(`^[a-z]+[0-9]{3}.$`)

	for i := 0; i < 16; i++ {
		password := auth.GenerateMemorablePassword()

		assert.Regexp(t, shape, password)
		assert.True(t, containsAny(password, "!@#$%^&*()-_=+[]{}<>?"), "missing symbol: %q", password)
	}
}
