package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// コマンド名
const (
	IncreaseDailyRanking = "IncreaseDailyRanking"
	DecreaseDailyRanking = "DecreaseDailyRanking"
)

// RankingDateLayout 集計日のフォーマット
const RankingDateLayout = "2006-01-02"

// IncreaseDailyRankingCommand 日次いいね集計を1増やす。
// PostLikedイベントを受けたsagaが発行する
type IncreaseDailyRankingCommand struct {
	Identifier      models.PostIdentifier
	AggregationDate string // YYYY-MM-DD
}

func (IncreaseDailyRankingCommand) CommandName() string { return IncreaseDailyRanking }

// DecreaseDailyRankingCommand 日次いいね集計を1減らす
type DecreaseDailyRankingCommand struct {
	Identifier      models.PostIdentifier
	AggregationDate string
}

func (DecreaseDailyRankingCommand) CommandName() string { return DecreaseDailyRanking }

// DailyRankingHandler 日次集計コマンドのハンドラー
type DailyRankingHandler struct {
	rankingRepo repository.RankingRepository
}

// NewDailyRankingHandler DailyRankingHandlerを作成
func NewDailyRankingHandler(rankingRepo repository.RankingRepository) *DailyRankingHandler {
	return &DailyRankingHandler{rankingRepo: rankingRepo}
}

// HandleIncrease 集計行をupsertしてカウントを増やす
func (h *DailyRankingHandler) HandleIncrease(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(IncreaseDailyRankingCommand)
	return nil, h.rankingRepo.IncreaseLikeCount(c.AggregationDate, c.Identifier)
}

// HandleDecrease 集計行のカウントを減らす
func (h *DailyRankingHandler) HandleDecrease(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(DecreaseDailyRankingCommand)
	return nil, h.rankingRepo.DecreaseLikeCount(c.AggregationDate, c.Identifier)
}
