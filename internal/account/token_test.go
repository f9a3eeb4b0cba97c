package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	user := User{
		ID:    "user-1",
		Email: "alice@example.com",
	}

	t.Run("an issued token verifies back to the same identity", func(t *testing.T) {
		manager := NewTokenManager("test-signing-key", time.Hour)

		signed, err := manager.Issue(user)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		identity, err := manager.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, Identity{UserID: "user-1", Email: "alice@example.com"}, identity)
	})

	t.Run("a token signed with another key is rejected", func(t *testing.T) {
		signed, err := NewTokenManager("other-key", time.Hour).Issue(user)
		require.NoError(t, err)

		_, err = NewTokenManager("test-signing-key", time.Hour).Verify(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("an expired token is rejected", func(t *testing.T) {
		manager := NewTokenManager("test-signing-key", -time.Minute)

		signed, err := manager.Issue(user)
		require.NoError(t, err)

		_, err = manager.Verify(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("a tampered token is rejected", func(t *testing.T) {
		manager := NewTokenManager("test-signing-key", time.Hour)

		signed, err := manager.Issue(user)
		require.NoError(t, err)

		_, err = manager.Verify(signed + "x")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage input is rejected", func(t *testing.T) {
		manager := NewTokenManager("test-signing-key", time.Hour)

		_, err := manager.Verify("not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
