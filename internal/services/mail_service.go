package services

import (
	"fmt"
	"log"

	"github.com/KodingCommunity/koding_backend/internal/config"
)

// MailService 確認メール・パスワードリセットメールの送信インターフェース。
// 実際の配送はメール基盤に委ねる
type MailService interface {
	SendSignupVerifyMail(email, nickname, verifyToken string) error
	SendPasswordResetMail(email, resetToken string) error
}

// logMailService 送信内容をログに出すだけの実装。
// TODO: SESでの配送実装に差し替える（基盤チームのSMTPエンドポイント払い出し待ち）
type logMailService struct {
	cfg *config.Config
}

// NewMailService MailServiceを作成
func NewMailService(cfg *config.Config) MailService {
	return &logMailService{cfg: cfg}
}

// SendSignupVerifyMail 会員登録の確認メールを送信
func (s *logMailService) SendSignupVerifyMail(email, nickname, verifyToken string) error {
	verifyLink := fmt.Sprintf("%s?nickname=%s&verifyToken=%s", s.cfg.Mail.VerifyURL, nickname, verifyToken)
	log.Printf("確認メール送信: from=%s, to=%s, link=%s", s.cfg.Mail.FromAddress, email, verifyLink)
	return nil
}

// SendPasswordResetMail パスワードリセットメールを送信
func (s *logMailService) SendPasswordResetMail(email, resetToken string) error {
	log.Printf("パスワードリセットメール送信: from=%s, to=%s, token=%s", s.cfg.Mail.FromAddress, email, resetToken)
	return nil
}
