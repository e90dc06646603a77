package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// コマンド名
const (
	ChangePassword         = "ChangePassword"
	SendPasswordResetToken = "SendPasswordResetToken"
	ResetPassword          = "ResetPassword"
)

// ChangePasswordCommand 現在のパスワードを確認して新しいパスワードに変更する
type ChangePasswordCommand struct {
	Nickname        string
	CurrentPassword string
	NewPassword     string
}

func (ChangePasswordCommand) CommandName() string { return ChangePassword }

// ChangePasswordHandler ChangePasswordCommandのハンドラー
type ChangePasswordHandler struct {
	userRepo    repository.UserRepository
	authService services.AuthService
}

// NewChangePasswordHandler ChangePasswordHandlerを作成
func NewChangePasswordHandler(userRepo repository.UserRepository, authService services.AuthService) *ChangePasswordHandler {
	return &ChangePasswordHandler{userRepo: userRepo, authService: authService}
}

// Handle パスワードを変更する。GitHub認証のみのユーザーは変更できない
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ChangePasswordCommand)

	user, err := h.userRepo.FindByNickname(c.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if !user.IsEmailUser() {
		return nil, apperror.Validation("パスワードが設定されていないアカウントです")
	}
	if !h.authService.VerifyPassword(user.Password, c.CurrentPassword) {
		return nil, apperror.Validation("現在のパスワードが正しくありません")
	}

	hashed, err := h.authService.HashPassword(c.NewPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return nil, nil
}

// SendPasswordResetTokenCommand 6桁のリセットトークンを発行してメールで送る
type SendPasswordResetTokenCommand struct {
	Email string
}

func (SendPasswordResetTokenCommand) CommandName() string { return SendPasswordResetToken }

// SendPasswordResetTokenHandler SendPasswordResetTokenCommandのハンドラー
type SendPasswordResetTokenHandler struct {
	userRepo    repository.UserRepository
	mailService services.MailService
}

// NewSendPasswordResetTokenHandler SendPasswordResetTokenHandlerを作成
func NewSendPasswordResetTokenHandler(userRepo repository.UserRepository, mailService services.MailService) *SendPasswordResetTokenHandler {
	return &SendPasswordResetTokenHandler{userRepo: userRepo, mailService: mailService}
}

// Handle トークンを発行して保存し、メールで通知する
func (h *SendPasswordResetTokenHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(SendPasswordResetTokenCommand)

	user, err := h.userRepo.FindByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if !user.IsEmailUser() {
		return nil, apperror.Validation("パスワードが設定されていないアカウントです")
	}

	token, err := newResetToken()
	if err != nil {
		return nil, err
	}
	user.PasswordResetToken = token

	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := h.mailService.SendPasswordResetMail(user.Email, token); err != nil {
		log.Printf("パスワードリセットメールの送信に失敗しました: email=%s, error=%v", user.Email, err)
	}
	return nil, nil
}

// newResetToken 6桁の数字トークンを生成する
func newResetToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ResetPasswordCommand リセットトークンを消費してパスワードを再設定する
type ResetPasswordCommand struct {
	Email       string
	ResetToken  string
	NewPassword string
}

func (ResetPasswordCommand) CommandName() string { return ResetPassword }

// ResetPasswordHandler ResetPasswordCommandのハンドラー
type ResetPasswordHandler struct {
	userRepo    repository.UserRepository
	authService services.AuthService
}

// NewResetPasswordHandler ResetPasswordHandlerを作成
func NewResetPasswordHandler(userRepo repository.UserRepository, authService services.AuthService) *ResetPasswordHandler {
	return &ResetPasswordHandler{userRepo: userRepo, authService: authService}
}

// Handle トークンは完全一致のみ許可し、成功後はクリアして再利用を防ぐ
func (h *ResetPasswordHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ResetPasswordCommand)

	user, err := h.userRepo.FindByEmail(c.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if user.PasswordResetToken == "" || user.PasswordResetToken != c.ResetToken {
		return nil, apperror.Validation("リセットトークンが正しくありません")
	}

	hashed, err := h.authService.HashPassword(c.NewPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	user.PasswordResetToken = ""

	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return nil, nil
}
