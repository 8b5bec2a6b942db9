package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/auth"
	"aitutor/internal/auth/authtest"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/validation"
)

func TestSignUpValidatesBeforeProvider(t *testing.T) {
	tests := []struct {
		name string
		form validation.SignupForm
		want string
	}{
		{
			name: "missing fields",
			form: validation.SignupForm{Email: "a@test.com", Password: "secret1"},
			want: validation.MsgFillAllFields,
		},
		{
			name: "password mismatch",
			form: validation.SignupForm{Email: "a@test.com", Password: "secret1", ConfirmPassword: "secret2"},
			want: validation.MsgPasswordMismatch,
		},
		{
			name: "short password",
			form: validation.SignupForm{Email: "a@test.com", Password: "abc", ConfirmPassword: "abc"},
			want: validation.MsgPasswordTooShort,
		},
	}

	svc := NewAuthService(logger.Nop(), validation.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := authtest.NewProvider()
			m := auth.NewMirror(provider)

			_, err := svc.SignUp(context.Background(), m, tt.form)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Zero(t, provider.CallCount())
			assert.False(t, m.IsAuthenticated())
		})
	}
}

func TestSignUpSignsIn(t *testing.T) {
	svc := NewAuthService(logger.Nop(), validation.New())
	provider := authtest.NewProvider()
	m := auth.NewMirror(provider)

	session, err := svc.SignUp(context.Background(), m, validation.SignupForm{
		Email:           "kid@test.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		UserType:        "child",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleChild, session.Role())
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, []string{"SignUp"}, provider.Calls)
}

func TestSignIn(t *testing.T) {
	svc := NewAuthService(logger.Nop(), validation.New())

	t.Run("empty form stays local", func(t *testing.T) {
		provider := authtest.NewProvider()
		_, err := svc.SignIn(context.Background(), auth.NewMirror(provider), validation.LoginForm{Email: "a@test.com"})
		require.Error(t, err)
		assert.Equal(t, validation.MsgLoginRequired, err.Error())
		assert.Zero(t, provider.CallCount())
	})

	t.Run("wrong password", func(t *testing.T) {
		provider := authtest.NewProvider()
		provider.AddUser("parent@test.com", "secret1", models.RoleParent)
		_, err := svc.SignIn(context.Background(), auth.NewMirror(provider), validation.LoginForm{Email: "parent@test.com", Password: "nope"})
		require.Error(t, err)
		assert.Equal(t, "Incorrect email or password.", err.Error())
	})

	t.Run("success then sign out", func(t *testing.T) {
		provider := authtest.NewProvider()
		provider.AddUser("parent@test.com", "secret1", models.RoleParent)
		m := auth.NewMirror(provider)

		_, err := svc.SignIn(context.Background(), m, validation.LoginForm{Email: "parent@test.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleParent, m.Role())

		require.NoError(t, svc.SignOut(context.Background(), m))
		assert.False(t, m.IsAuthenticated())
	})
}
