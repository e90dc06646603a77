package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GithubProfile GitHubのユーザーAPIから取得する情報。
// レスポンスのうち必要なフィールドだけを使う
type GithubProfile struct {
	ID        int64  `json:"id"` // GitHubの数値ID。変わることがない
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	ReposURL  string `json:"repos_url"`
}

// GithubService GitHub OAuthとAPI呼び出しを行うサービスインターフェース
type GithubService interface {
	AuthCodeURL(state string) string
	ExchangeUser(ctx context.Context, code string) (*GithubProfile, error)
	FetchRepositories(ctx context.Context, reposURL string) ([]models.GithubRepositoryInfo, error)
}

// githubService GithubServiceの実装
type githubService struct {
	oauth  *oauth2.Config
	client *http.Client
}

// NewGithubService GithubServiceを作成
func NewGithubService(cfg *config.Config) GithubService {
	return &githubService{
		oauth: &oauth2.Config{
			ClientID:     cfg.Auth.GithubClientID,
			ClientSecret: cfg.Auth.GithubClientSecret,
			RedirectURL:  cfg.Server.APIBaseURL + "/api/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		client: http.DefaultClient,
	}
}

// AuthCodeURL 認可のためにユーザーをリダイレクトするURLを返す
func (s *githubService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeUser 認可コードをアクセストークンに交換し、ユーザー情報を取得する
func (s *githubService) ExchangeUser(ctx context.Context, code string) (*GithubProfile, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("認可コードの交換に失敗しました: %w", err)
	}

	client := s.oauth.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("GitHubユーザーAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHubユーザーAPIがステータス%dを返しました", resp.StatusCode)
	}

	var profile GithubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("GitHubユーザーAPIレスポンスの解析に失敗しました: %w", err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("GitHubが不正なユーザーを返しました")
	}
	return &profile, nil
}

// FetchRepositories リポジトリ一覧URLからリポジトリ情報を取得する
func (s *githubService) FetchRepositories(ctx context.Context, reposURL string) ([]models.GithubRepositoryInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reposURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リポジトリ一覧の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("リポジトリ一覧APIがステータス%dを返しました", resp.StatusCode)
	}

	var raw []struct {
		Name            string `json:"name"`
		HTMLURL         string `json:"html_url"`
		Description     string `json:"description"`
		StargazersCount int    `json:"stargazers_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("リポジトリ一覧の解析に失敗しました: %w", err)
	}

	repositories := make([]models.GithubRepositoryInfo, 0, len(raw))
	for _, repo := range raw {
		repositories = append(repositories, models.GithubRepositoryInfo{
			Name:        repo.Name,
			HTMLURL:     repo.HTMLURL,
			Description: repo.Description,
			StarCount:   repo.StargazersCount,
		})
	}
	return repositories, nil
}
