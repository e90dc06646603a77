package commands

import (
	"context"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// コマンド名
const (
	FollowUser   = "FollowUser"
	UnfollowUser = "UnfollowUser"
)

// FollowUserCommand フォロー関係を追加する
type FollowUserCommand struct {
	FromNickname string
	ToNickname   string
}

func (FollowUserCommand) CommandName() string { return FollowUser }

// FollowResult フォロー操作後の両ユーザー
type FollowResult struct {
	From *models.User
	To   *models.User
}

// FollowUserHandler FollowUserCommandのハンドラー
type FollowUserHandler struct {
	userRepo  repository.UserRepository
	publisher cqrs.EventPublisher
}

// NewFollowUserHandler FollowUserHandlerを作成
func NewFollowUserHandler(userRepo repository.UserRepository, publisher cqrs.EventPublisher) *FollowUserHandler {
	return &FollowUserHandler{userRepo: userRepo, publisher: publisher}
}

// Handle 自己フォローを拒否し、両ユーザーを1回のinクエリでまとめて取得する。
// フォロー関係が新規に成立した場合のみイベントを発行する。
// 新規かどうかはアトミックなupsertの挿入シグナルで判定する
func (h *FollowUserHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(FollowUserCommand)

	if c.FromNickname == c.ToNickname {
		return nil, apperror.Validation("自分自身はフォローできません")
	}

	users, err := h.userRepo.FindAllByNicknames([]string{c.FromNickname, c.ToNickname})
	if err != nil {
		return nil, err
	}
	if len(users) != 2 {
		return nil, apperror.NotFound("ユーザー")
	}

	var from, to *models.User
	for i := range users {
		switch users[i].Nickname {
		case c.FromNickname:
			from = &users[i]
		case c.ToNickname:
			to = &users[i]
		}
	}

	inserted, err := h.userRepo.Follow(c.FromNickname, c.ToNickname)
	if err != nil {
		return nil, err
	}
	if inserted {
		h.publisher.Publish(ctx, events.UserFollowedEvent{
			FromNickname: c.FromNickname,
			ToNickname:   c.ToNickname,
			FollowedAt:   time.Now(),
		})
	}

	return &FollowResult{From: from, To: to}, nil
}

// UnfollowUserCommand フォロー関係を解消する
type UnfollowUserCommand struct {
	FromNickname string
	ToNickname   string
}

func (UnfollowUserCommand) CommandName() string { return UnfollowUser }

// UnfollowUserHandler UnfollowUserCommandのハンドラー
type UnfollowUserHandler struct {
	userRepo  repository.UserRepository
	publisher cqrs.EventPublisher
}

// NewUnfollowUserHandler UnfollowUserHandlerを作成
func NewUnfollowUserHandler(userRepo repository.UserRepository, publisher cqrs.EventPublisher) *UnfollowUserHandler {
	return &UnfollowUserHandler{userRepo: userRepo, publisher: publisher}
}

// Handle フォローしていなかった場合も成功として扱う（冪等）
func (h *UnfollowUserHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(UnfollowUserCommand)

	if c.FromNickname == c.ToNickname {
		return nil, apperror.Validation("自分自身はアンフォローできません")
	}

	users, err := h.userRepo.FindAllByNicknames([]string{c.FromNickname, c.ToNickname})
	if err != nil {
		return nil, err
	}
	if len(users) != 2 {
		return nil, apperror.NotFound("ユーザー")
	}

	removed, err := h.userRepo.Unfollow(c.FromNickname, c.ToNickname)
	if err != nil {
		return nil, err
	}
	if removed {
		h.publisher.Publish(ctx, events.UserUnfollowedEvent{
			FromNickname: c.FromNickname,
			ToNickname:   c.ToNickname,
			UnfollowedAt: time.Now(),
		})
	}
	return nil, nil
}
