package sagas

import (
	"context"
	"fmt"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// CommentCountSaga コメントの増減イベントを受けて投稿のコメント数を
// 追従させるsaga
type CommentCountSaga struct {
	postRepo repository.PostRepository
}

// NewCommentCountSaga CommentCountSagaを作成
func NewCommentCountSaga(postRepo repository.PostRepository) *CommentCountSaga {
	return &CommentCountSaga{postRepo: postRepo}
}

// Register イベントバスに購読登録する
func (s *CommentCountSaga) Register(bus *cqrs.EventBus) {
	bus.Subscribe(events.CommentAdded, cqrs.EventHandlerFunc(s.onCommentAdded))
	bus.Subscribe(events.CommentDeleted, cqrs.EventHandlerFunc(s.onCommentDeleted))
}

func (s *CommentCountSaga) onCommentAdded(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.CommentAddedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}
	return s.postRepo.IncreaseCommentCount(e.PostIdentifier)
}

func (s *CommentCountSaga) onCommentDeleted(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.CommentDeletedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}
	return s.postRepo.DecreaseCommentCount(e.PostIdentifier)
}
