package commands

import (
	"context"
	"testing"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGithubService 固定のリポジトリ一覧を返すテスト用実装
type fakeGithubService struct {
	repositories []models.GithubRepositoryInfo
	fetchErr     error
}

func (s *fakeGithubService) AuthCodeURL(state string) string { return "https://example.com/" + state }

func (s *fakeGithubService) ExchangeUser(ctx context.Context, code string) (*services.GithubProfile, error) {
	return nil, nil
}

func (s *fakeGithubService) FetchRepositories(ctx context.Context, reposURL string) ([]models.GithubRepositoryInfo, error) {
	return s.repositories, s.fetchErr
}

func githubCommand() SignupGithubCommand {
	return SignupGithubCommand{
		GithubID:             "octocat",
		GithubUserIdentifier: 12345,
		ReposURL:             "https://api.github.com/users/octocat/repos",
		AvatarURL:            "https://example.com/avatar.png",
		Email:                "octocat@example.com",
		Name:                 "The Octocat",
	}
}

func TestSignupGithubCreatesNewUser(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	github := &fakeGithubService{repositories: []models.GithubRepositoryInfo{
		{Name: "hello-world", HTMLURL: "https://github.com/octocat/hello-world", StarCount: 3},
	}}
	handler := NewSignupGithubHandler(userRepo, github)

	result, err := handler.Handle(context.Background(), githubCommand())
	require.NoError(t, err)
	user := result.(*models.User)

	assert.Equal(t, "octocat", user.Nickname, "正式なニックネームが決まるまでログイン名を仮で使う")
	require.NotNil(t, user.GithubUserIdentifier)
	assert.Equal(t, int64(12345), *user.GithubUserIdentifier)
	require.NotNil(t, user.GithubUserInfo)
	assert.Len(t, user.GithubUserInfo.Repositories, 1)
	assert.NotEmpty(t, user.GithubSignupVerifyToken)
	assert.False(t, user.IsVerified())
}

func TestSignupGithubSameIdentifierReturnsExistingUser(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewSignupGithubHandler(userRepo, &fakeGithubService{})

	first, err := handler.Handle(context.Background(), githubCommand())
	require.NoError(t, err)
	second, err := handler.Handle(context.Background(), githubCommand())
	require.NoError(t, err)

	assert.Equal(t, first.(*models.User).ID, second.(*models.User).ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupGithubLinksExistingEmailAccount(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewSignupGithubHandler(userRepo, &fakeGithubService{})

	require.NoError(t, userRepo.Create(&models.User{
		Email:    "octocat@example.com",
		Nickname: "alice",
		Password: "hashed",
	}))

	result, err := handler.Handle(context.Background(), githubCommand())
	require.NoError(t, err)
	user := result.(*models.User)

	assert.Equal(t, "alice", user.Nickname, "既存アカウントのニックネームは変わらない")
	require.NotNil(t, user.GithubUserIdentifier)
	assert.Equal(t, int64(12345), *user.GithubUserIdentifier)
	assert.True(t, user.IsEmailUser())
	assert.True(t, user.IsGithubUser())
}

func TestSignupGithubLoginNameCollisionIsConflict(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewSignupGithubHandler(userRepo, &fakeGithubService{})

	// GitHubのログイン名と同じニックネームのユーザーが既にいる
	require.NoError(t, userRepo.Create(&models.User{
		Email:    "someone@example.com",
		Nickname: "octocat",
		Password: "hashed",
	}))

	_, err := handler.Handle(context.Background(), githubCommand())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrConflict))
}

func TestSignupGithubRejectsDeletedAccount(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := NewSignupGithubHandler(userRepo, &fakeGithubService{})

	deletedAt := time.Now()
	require.NoError(t, userRepo.Create(&models.User{
		Email:               "octocat@example.com",
		Nickname:            "alice",
		Password:            "hashed",
		AccountDeletedSince: &deletedAt,
	}))

	_, err := handler.Handle(context.Background(), githubCommand())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrForbidden))
}
