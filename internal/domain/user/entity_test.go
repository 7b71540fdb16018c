//go:build unit

package user_test

import (
	"testing"

	"solestore/internal/domain/user"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmp.AllowUnexported(user.Email{}),
	cmpopts.EquateEmpty(),
}

func TestNewEmail(t *testing.T) {
	t.Run("canonicalizes case and surrounding whitespace", func(t *testing.T) {
		email, err := user.NewEmail("  Taro@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "taro@example.com", email.Value())

		same, err := user.NewEmail("taro@example.com")
		require.NoError(t, err)
		if diff := cmp.Diff(same, email, cmpOpts...); diff != "" {
			t.Errorf("Email mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		invalid := []string{
			"",
			"plainaddress",
			"@example.com",
			"taro@",
			"taro@example",
			"taro example@example.com",
		}
		for _, input := range invalid {
			_, err := user.NewEmail(input)
			assert.ErrorIs(t, err, user.ErrInvalidEmail, "input: %q", input)
		}
	})
}

func TestNewPassword(t *testing.T) {
	t.Run("accepts 8 characters", func(t *testing.T) {
		p, err := user.NewPassword("12345678")
		require.NoError(t, err)
		assert.Equal(t, "12345678", p.Value())
	})

	t.Run("rejects 7 characters", func(t *testing.T) {
		_, err := user.NewPassword("1234567")
		assert.ErrorIs(t, err, user.ErrPasswordTooWeak)
	})
}

func TestNewUser(t *testing.T) {
	email, err := user.NewEmail("taro@example.com")
	require.NoError(t, err)

	u := user.NewUser(email, "hashed_password", "Taro Yamada", user.RoleCustomer)

	assert.NotEqual(t, uuid.Nil, u.ID())
	assert.Equal(t, "hashed_password", u.PasswordHash())
	assert.Equal(t, "Taro Yamada", u.Name())
	assert.Equal(t, user.RoleCustomer, u.Role())
	assert.True(t, u.IsActive())
	assert.Nil(t, u.LastLogin())

	if diff := cmp.Diff(email, u.Email(), cmpOpts...); diff != "" {
		t.Errorf("Email mismatch (-want +got):\n%s", diff)
	}
}

func TestRole(t *testing.T) {
	t.Run("only customer and admin are valid", func(t *testing.T) {
		for _, input := range []string{"customer", "admin"} {
			role, err := user.NewRole(input)
			require.NoError(t, err)
			assert.True(t, role.IsValid())
		}

		_, err := user.NewRole("superuser")
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("only admin passes the admin check", func(t *testing.T) {
		assert.True(t, user.RoleAdmin.IsAdmin())
		assert.False(t, user.RoleCustomer.IsAdmin())
	})
}
