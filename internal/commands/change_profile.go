package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// ChangeProfile プロフィール変更コマンド名
const ChangeProfile = "ChangeProfile"

// ChangeProfileCommand プロフィール情報を変更する。nilのフィールドは変更しない
type ChangeProfileCommand struct {
	Nickname             string
	AvatarURL            *string
	BlogURL              *string
	GithubURL            *string
	PortfolioURL         *string
	IsBlogURLPublic      *bool
	IsGithubURLPublic    *bool
	IsPortfolioURLPublic *bool
}

func (ChangeProfileCommand) CommandName() string { return ChangeProfile }

// ChangeProfileHandler ChangeProfileCommandのハンドラー
type ChangeProfileHandler struct {
	userRepo repository.UserRepository
}

// NewChangeProfileHandler ChangeProfileHandlerを作成
func NewChangeProfileHandler(userRepo repository.UserRepository) *ChangeProfileHandler {
	return &ChangeProfileHandler{userRepo: userRepo}
}

// Handle 指定されたフィールドだけを更新する
func (h *ChangeProfileHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ChangeProfileCommand)

	user, err := h.userRepo.FindByNickname(c.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}

	if c.AvatarURL != nil {
		user.AvatarURL = *c.AvatarURL
	}
	if c.BlogURL != nil {
		user.BlogURL = *c.BlogURL
	}
	if c.GithubURL != nil {
		user.GithubURL = *c.GithubURL
	}
	if c.PortfolioURL != nil {
		user.PortfolioURL = *c.PortfolioURL
	}
	if c.IsBlogURLPublic != nil {
		user.IsBlogURLPublic = *c.IsBlogURLPublic
	}
	if c.IsGithubURLPublic != nil {
		user.IsGithubURLPublic = *c.IsGithubURLPublic
	}
	if c.IsPortfolioURLPublic != nil {
		user.IsPortfolioURLPublic = *c.IsPortfolioURLPublic
	}

	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
