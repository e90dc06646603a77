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

// DeletePost 投稿削除コマンド名
const DeletePost = "DeletePost"

// DeletePostCommand 投稿を削除する
type DeletePostCommand struct {
	Identifier        models.PostIdentifier
	RequesterNickname string
}

func (DeletePostCommand) CommandName() string { return DeletePost }

// DeletePostHandler DeletePostCommandのハンドラー
type DeletePostHandler struct {
	postRepo  repository.PostRepository
	publisher cqrs.EventPublisher
}

// NewDeletePostHandler DeletePostHandlerを作成
func NewDeletePostHandler(postRepo repository.PostRepository, publisher cqrs.EventPublisher) *DeletePostHandler {
	return &DeletePostHandler{postRepo: postRepo, publisher: publisher}
}

// Handle 所有者だけが削除できる。孤児になったコメント・いいね・
// スクラップ・画像の回収はPostDeletedイベント経由でsagaが行う
func (h *DeletePostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(DeletePostCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}
	if !post.IsOwnedBy(c.RequesterNickname) {
		return nil, apperror.Forbidden("自分の投稿だけを削除できます")
	}

	removed, err := h.postRepo.Remove(post)
	if err != nil {
		return nil, err
	}
	if removed {
		h.publisher.Publish(ctx, events.PostDeletedEvent{
			PostIdentifier: c.Identifier,
			WriterNickname: post.WriterNickname,
			DeletedAt:      time.Now(),
		})
	}
	return nil, nil
}
