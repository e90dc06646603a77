// Package sagas イベントに反応して後続のコマンドや後始末を実行する
// プロセスマネージャー群。ハンドラーの失敗はイベントバスがログに残し、
// 元の操作は失敗しない
package sagas

import (
	"context"
	"fmt"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
)

// CommandDispatcher sagaが後続コマンドを発行するためのインターフェース
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd cqrs.Command) (interface{}, error)
}

// RankingSaga いいねイベントを日次集計コマンドに変換するsaga。
// 集計日はいいね（取り消し時は元のいいね）が起きた日付
type RankingSaga struct {
	dispatcher CommandDispatcher
}

// NewRankingSaga RankingSagaを作成
func NewRankingSaga(dispatcher CommandDispatcher) *RankingSaga {
	return &RankingSaga{dispatcher: dispatcher}
}

// Register イベントバスに購読登録する
func (s *RankingSaga) Register(bus *cqrs.EventBus) {
	bus.Subscribe(events.PostLiked, cqrs.EventHandlerFunc(s.onPostLiked))
	bus.Subscribe(events.PostUnliked, cqrs.EventHandlerFunc(s.onPostUnliked))
}

func (s *RankingSaga) onPostLiked(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.PostLikedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}
	_, err := s.dispatcher.Dispatch(ctx, commands.IncreaseDailyRankingCommand{
		Identifier:      e.PostIdentifier,
		AggregationDate: e.LikedAt.Format(commands.RankingDateLayout),
	})
	return err
}

func (s *RankingSaga) onPostUnliked(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.PostUnlikedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}
	_, err := s.dispatcher.Dispatch(ctx, commands.DecreaseDailyRankingCommand{
		Identifier:      e.PostIdentifier,
		AggregationDate: e.LikedAt.Format(commands.RankingDateLayout),
	})
	return err
}
