package commands

import (
	"context"
	"errors"
	"log"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"gorm.io/gorm"
)

// SignupGithub GitHub会員登録コマンド名
const SignupGithub = "SignupGithub"

// SignupGithubCommand GitHub OAuthの情報で会員登録またはログインする
type SignupGithubCommand struct {
	GithubID             string // GitHubのログイン名
	GithubUserIdentifier int64  // GitHubの数値ID。変わることがない
	ReposURL             string
	AvatarURL            string
	Email                string
	Name                 string
}

func (SignupGithubCommand) CommandName() string { return SignupGithub }

// SignupGithubHandler SignupGithubCommandのハンドラー
type SignupGithubHandler struct {
	userRepo      repository.UserRepository
	githubService services.GithubService
}

// NewSignupGithubHandler SignupGithubHandlerを作成
func NewSignupGithubHandler(userRepo repository.UserRepository, githubService services.GithubService) *SignupGithubHandler {
	return &SignupGithubHandler{
		userRepo:      userRepo,
		githubService: githubService,
	}
}

// Handle GitHub識別子での検索を先に行い（再訪ユーザーの速経路）、
// 見つからなければメールアドレスで既存アカウントを探して連携する。
// 退会済みアカウントへの連携は拒否する
func (h *SignupGithubHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(SignupGithubCommand)

	user, err := h.userRepo.FindByGithubIdentifier(c.GithubUserIdentifier)
	if err != nil {
		return nil, err
	}
	if user != nil {
		// 同じ識別子での再登録は既存ユーザーをそのまま返す
		return user, nil
	}

	repositories, err := h.githubService.FetchRepositories(ctx, c.ReposURL)
	if err != nil {
		// リポジトリ情報は補助情報なので、取得失敗でも登録は続行する
		log.Printf("GitHubリポジトリ情報の取得に失敗しました: %v", err)
		repositories = nil
	}

	githubUserInfo := &models.GithubUserInfo{
		GithubID:     c.GithubID,
		Email:        c.Email,
		Name:         c.Name,
		AvatarURL:    c.AvatarURL,
		Repositories: repositories,
	}

	user, err = h.userRepo.FindByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if user.IsDeleted() {
			return nil, apperror.Forbidden("退会済みのアカウントでは登録できません")
		}
		// メール登録済みのアカウントにGitHub識別子を連携する
		user.LinkAccountWithGithub(c.GithubUserIdentifier, githubUserInfo)
		if err := h.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	// 新規ユーザー。ニックネームは確認ステップで決まるまでログイン名を仮で使う
	identifier := c.GithubUserIdentifier
	user = &models.User{
		Email:                c.Email,
		Nickname:             c.GithubID,
		GithubUserIdentifier: &identifier,
		GithubUserInfo:       githubUserInfo,
		AvatarURL:            c.AvatarURL,
	}
	user.SetNewGithubSignupVerifyToken()

	if err := h.userRepo.PersistByEmail(user); err != nil {
		// ログイン名が既存のニックネームと衝突した場合
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("このニックネームは既に使われています")
		}
		return nil, err
	}
	return user, nil
}
