package commands

import (
	"context"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmailSignupConsumesTokenOnce(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewVerifyEmailSignupHandler(userRepo)

	user := &models.User{Email: "a@example.com", Nickname: "alice", Password: "hashed"}
	user.SetNewEmailSignupVerifyToken()
	token := user.EmailSignupVerifyToken
	require.NoError(t, userRepo.Create(user))

	result, err := handler.Handle(context.Background(), VerifyEmailSignupCommand{
		Email:       "a@example.com",
		VerifyToken: token,
	})
	require.NoError(t, err)
	verified := result.(*models.User)
	assert.True(t, verified.EmailSignupVerified)
	assert.Empty(t, verified.EmailSignupVerifyToken, "成功後はトークンがクリアされる")

	// 同じトークンの再利用は拒否される
	_, err = handler.Handle(context.Background(), VerifyEmailSignupCommand{
		Email:       "a@example.com",
		VerifyToken: token,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrValidation))
}

func TestVerifyEmailSignupRejectsWrongToken(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewVerifyEmailSignupHandler(userRepo)

	user := &models.User{Email: "a@example.com", Nickname: "alice", Password: "hashed"}
	user.SetNewEmailSignupVerifyToken()
	require.NoError(t, userRepo.Create(user))

	_, err := handler.Handle(context.Background(), VerifyEmailSignupCommand{
		Email:       "a@example.com",
		VerifyToken: "wrong-token",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrValidation))

	stored, err := userRepo.FindByEmail("a@example.com")
	require.NoError(t, err)
	assert.False(t, stored.EmailSignupVerified)
}

func TestVerifyGithubSignupFinalizesNickname(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewVerifyGithubSignupHandler(userRepo)

	identifier := int64(12345)
	user := &models.User{
		Email:                "a@example.com",
		Nickname:             "octocat", // GitHubのログイン名を仮で使っている
		GithubUserIdentifier: &identifier,
	}
	user.SetNewGithubSignupVerifyToken()
	token := user.GithubSignupVerifyToken
	require.NoError(t, userRepo.Create(user))

	result, err := handler.Handle(context.Background(), VerifyGithubSignupCommand{
		Email:       "a@example.com",
		VerifyToken: token,
		Nickname:    "alice",
	})
	require.NoError(t, err)
	verified := result.(*models.User)
	assert.Equal(t, "alice", verified.Nickname)
	assert.True(t, verified.GithubSignupVerified)
}

func TestVerifyGithubSignupRejectsTakenNickname(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewVerifyGithubSignupHandler(userRepo)

	require.NoError(t, userRepo.Create(&models.User{Email: "b@example.com", Nickname: "alice"}))

	identifier := int64(12345)
	user := &models.User{
		Email:                "a@example.com",
		Nickname:             "octocat",
		GithubUserIdentifier: &identifier,
	}
	user.SetNewGithubSignupVerifyToken()
	require.NoError(t, userRepo.Create(user))

	_, err := handler.Handle(context.Background(), VerifyGithubSignupCommand{
		Email:       "a@example.com",
		VerifyToken: user.GithubSignupVerifyToken,
		Nickname:    "alice",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrConflict))
}
