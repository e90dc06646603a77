package commands

import (
	"context"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// コマンド名
const (
	DeleteAccount = "DeleteAccount"
	DeleteAvatar  = "DeleteAvatar"
)

// DeleteAccountCommand アカウントを退会させる。
// 行は消さず退会マーカーを付ける（GitHub再連携の拒否に使う）
type DeleteAccountCommand struct {
	Nickname string
}

func (DeleteAccountCommand) CommandName() string { return DeleteAccount }

// DeleteAccountHandler DeleteAccountCommandのハンドラー
type DeleteAccountHandler struct {
	userRepo  repository.UserRepository
	publisher cqrs.EventPublisher
}

// NewDeleteAccountHandler DeleteAccountHandlerを作成
func NewDeleteAccountHandler(userRepo repository.UserRepository, publisher cqrs.EventPublisher) *DeleteAccountHandler {
	return &DeleteAccountHandler{userRepo: userRepo, publisher: publisher}
}

// Handle 退会マーカーを付け、認証トークン類をクリアする
func (h *DeleteAccountHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(DeleteAccountCommand)

	user, err := h.userRepo.FindByNickname(c.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if user.IsDeleted() {
		return nil, nil
	}

	now := time.Now()
	user.AccountDeletedSince = &now
	user.EmailSignupVerifyToken = ""
	user.GithubSignupVerifyToken = ""
	user.PasswordResetToken = ""

	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.AccountDeletedEvent{
		Nickname:  c.Nickname,
		DeletedAt: now,
	})
	return nil, nil
}

// DeleteAvatarCommand プロフィール画像を削除する
type DeleteAvatarCommand struct {
	Nickname string
}

func (DeleteAvatarCommand) CommandName() string { return DeleteAvatar }

// DeleteAvatarHandler DeleteAvatarCommandのハンドラー
type DeleteAvatarHandler struct {
	userRepo    repository.UserRepository
	s3ImageRepo repository.S3ImageRepository
	s3Service   services.S3Service
}

// NewDeleteAvatarHandler DeleteAvatarHandlerを作成
func NewDeleteAvatarHandler(
	userRepo repository.UserRepository,
	s3ImageRepo repository.S3ImageRepository,
	s3Service services.S3Service,
) *DeleteAvatarHandler {
	return &DeleteAvatarHandler{
		userRepo:    userRepo,
		s3ImageRepo: s3ImageRepo,
		s3Service:   s3Service,
	}
}

// Handle S3上の画像と記録を消し、プロフィールのURLをクリアする
func (h *DeleteAvatarHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(DeleteAvatarCommand)

	user, err := h.userRepo.FindByNickname(c.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if user.AvatarURL == "" {
		return nil, nil
	}

	avatarImages, err := h.s3ImageRepo.ListAvatarOf(c.Nickname)
	if err != nil {
		return nil, err
	}
	fileKeys := make([]string, 0, len(avatarImages))
	for _, image := range avatarImages {
		fileKeys = append(fileKeys, image.FileKey)
	}
	if len(fileKeys) > 0 {
		if err := h.s3Service.DeleteImages(models.S3ImageAvatar, fileKeys); err != nil {
			return nil, err
		}
		if err := h.s3ImageRepo.RemoveByKeys(fileKeys); err != nil {
			return nil, err
		}
	}

	user.AvatarURL = ""
	if err := h.userRepo.Update(user); err != nil {
		return nil, err
	}
	return nil, nil
}
