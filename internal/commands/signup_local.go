// Package commands 状態を変更するユースケースのコマンドとハンドラー。
// 各コマンドはちょうど1つのハンドラーに配送される
package commands

import (
	"context"
	"log"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// SignupLocal メール会員登録コマンド名
const SignupLocal = "SignupLocal"

// SignupLocalCommand メールアドレスで会員登録する
type SignupLocalCommand struct {
	Email        string
	Nickname     string
	Password     string
	AvatarURL    string
	BlogURL      string
	GithubURL    string
	PortfolioURL string
}

func (SignupLocalCommand) CommandName() string { return SignupLocal }

// SignupLocalHandler SignupLocalCommandのハンドラー
type SignupLocalHandler struct {
	userRepo    repository.UserRepository
	authService services.AuthService
	mailService services.MailService
}

// NewSignupLocalHandler SignupLocalHandlerを作成
func NewSignupLocalHandler(
	userRepo repository.UserRepository,
	authService services.AuthService,
	mailService services.MailService,
) *SignupLocalHandler {
	return &SignupLocalHandler{
		userRepo:    userRepo,
		authService: authService,
		mailService: mailService,
	}
}

// Handle 重複を確認した上でユーザーを作成し、確認メールを送る
func (h *SignupLocalHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(SignupLocalCommand)

	exists, err := h.userRepo.ExistsByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("このメールアドレスは既に使用されています")
	}
	exists, err = h.userRepo.ExistsByNickname(c.Nickname)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("このニックネームは既に使用されています")
	}

	hashed, err := h.authService.HashPassword(c.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        c.Email,
		Nickname:     c.Nickname,
		Password:     hashed,
		AvatarURL:    c.AvatarURL,
		BlogURL:      c.BlogURL,
		GithubURL:    c.GithubURL,
		PortfolioURL: c.PortfolioURL,
	}
	user.SetNewEmailSignupVerifyToken()

	if err := h.userRepo.Create(user); err != nil {
		return nil, err
	}

	if err := h.mailService.SendSignupVerifyMail(user.Email, user.Nickname, user.EmailSignupVerifyToken); err != nil {
		// メール送信の失敗で登録自体は失敗させない
		log.Printf("確認メールの送信に失敗しました: email=%s, error=%v", user.Email, err)
	}

	return user, nil
}
