package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// コマンド名
const (
	VerifyEmailSignup  = "VerifyEmailSignup"
	VerifyGithubSignup = "VerifyGithubSignup"
)

// VerifyEmailSignupCommand メール確認トークンを消費して本人確認を完了する
type VerifyEmailSignupCommand struct {
	Email       string
	VerifyToken string
}

func (VerifyEmailSignupCommand) CommandName() string { return VerifyEmailSignup }

// VerifyEmailSignupHandler VerifyEmailSignupCommandのハンドラー
type VerifyEmailSignupHandler struct {
	userRepo repository.UserRepository
}

// NewVerifyEmailSignupHandler VerifyEmailSignupHandlerを作成
func NewVerifyEmailSignupHandler(userRepo repository.UserRepository) *VerifyEmailSignupHandler {
	return &VerifyEmailSignupHandler{userRepo: userRepo}
}

// Handle トークンが完全一致した場合のみverifiedに遷移し、トークンをクリアする
func (h *VerifyEmailSignupHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(VerifyEmailSignupCommand)

	user, err := h.userRepo.FindByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}

	if err := user.VerifyEmailSignup(c.VerifyToken); err != nil {
		return nil, err
	}
	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyGithubSignupCommand GitHub確認トークンを消費して登録を完了する。
// このステップで正式なニックネームが決まる
type VerifyGithubSignupCommand struct {
	Email       string
	VerifyToken string
	Nickname    string
}

func (VerifyGithubSignupCommand) CommandName() string { return VerifyGithubSignup }

// VerifyGithubSignupHandler VerifyGithubSignupCommandのハンドラー
type VerifyGithubSignupHandler struct {
	userRepo repository.UserRepository
}

// NewVerifyGithubSignupHandler VerifyGithubSignupHandlerを作成
func NewVerifyGithubSignupHandler(userRepo repository.UserRepository) *VerifyGithubSignupHandler {
	return &VerifyGithubSignupHandler{userRepo: userRepo}
}

// Handle トークン照合とニックネーム確定を行う
func (h *VerifyGithubSignupHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(VerifyGithubSignupCommand)

	user, err := h.userRepo.FindByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}

	if c.Nickname != "" && c.Nickname != user.Nickname {
		exists, err := h.userRepo.ExistsByNickname(c.Nickname)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.Conflict("このニックネームは既に使用されています")
		}
		user.Nickname = c.Nickname
	}

	if err := user.VerifyGithubSignup(c.VerifyToken); err != nil {
		return nil, err
	}
	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
