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
	LikePost   = "LikePost"
	UnlikePost = "UnlikePost"
)

// LikePostCommand 投稿にいいねを付ける
type LikePostCommand struct {
	Identifier models.PostIdentifier
	Nickname   string
}

func (LikePostCommand) CommandName() string { return LikePost }

// LikePostHandler LikePostCommandのハンドラー
type LikePostHandler struct {
	postRepo  repository.PostRepository
	likeRepo  repository.PostLikeRepository
	publisher cqrs.EventPublisher
}

// NewLikePostHandler LikePostHandlerを作成
func NewLikePostHandler(
	postRepo repository.PostRepository,
	likeRepo repository.PostLikeRepository,
	publisher cqrs.EventPublisher,
) *LikePostHandler {
	return &LikePostHandler{postRepo: postRepo, likeRepo: likeRepo, publisher: publisher}
}

// Handle upsertの挿入シグナルに基づいて、カウンターの加算と
// イベント発行をちょうど1回だけ行う（冪等）
func (h *LikePostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(LikePostCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}

	inserted, err := h.likeRepo.Insert(&models.PostLike{
		Nickname:  c.Nickname,
		PostID:    c.Identifier.PostID,
		BoardType: c.Identifier.BoardType,
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		if err := h.postRepo.IncreaseLikeCount(c.Identifier); err != nil {
			return nil, err
		}
		h.publisher.Publish(ctx, events.PostLikedEvent{
			PostIdentifier: c.Identifier,
			Nickname:       c.Nickname,
			LikedAt:        time.Now(),
		})
	}
	return nil, nil
}

// UnlikePostCommand いいねを取り消す
type UnlikePostCommand struct {
	Identifier models.PostIdentifier
	Nickname   string
}

func (UnlikePostCommand) CommandName() string { return UnlikePost }

// UnlikePostHandler UnlikePostCommandのハンドラー
type UnlikePostHandler struct {
	postRepo  repository.PostRepository
	likeRepo  repository.PostLikeRepository
	publisher cqrs.EventPublisher
}

// NewUnlikePostHandler UnlikePostHandlerを作成
func NewUnlikePostHandler(
	postRepo repository.PostRepository,
	likeRepo repository.PostLikeRepository,
	publisher cqrs.EventPublisher,
) *UnlikePostHandler {
	return &UnlikePostHandler{postRepo: postRepo, likeRepo: likeRepo, publisher: publisher}
}

// Handle いいねしていなければ何もしない（冪等）
func (h *UnlikePostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(UnlikePostCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}

	deleted, err := h.likeRepo.Remove(c.Identifier, c.Nickname)
	if err != nil {
		return nil, err
	}
	if deleted != nil {
		if err := h.postRepo.DecreaseLikeCount(c.Identifier); err != nil {
			return nil, err
		}
		h.publisher.Publish(ctx, events.PostUnlikedEvent{
			PostIdentifier: c.Identifier,
			Nickname:       c.Nickname,
			LikedAt:        deleted.CreatedAt,
		})
	}
	return nil, nil
}
