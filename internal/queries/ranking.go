package queries

import (
	"context"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// GetDailyRanking 日次ランキングクエリ名
const GetDailyRanking = "GetDailyRanking"

const defaultRankingSize = 10

// GetDailyRankingQuery 指定日のいいね数上位の投稿を取得する。
// Dateが空のときは今日が対象
type GetDailyRankingQuery struct {
	Date  string // YYYY-MM-DD
	Limit int
}

func (GetDailyRankingQuery) QueryName() string { return GetDailyRanking }

// RankedPost ランキングの1エントリ
type RankedPost struct {
	Rank      int         `json:"rank"`
	LikeCount int         `json:"like_count"`
	Post      models.Post `json:"post"`
}

// RankingQueryHandler 日次ランキングクエリのハンドラー
type RankingQueryHandler struct {
	rankingRepo repository.RankingRepository
	postRepo    repository.PostRepository
}

// NewRankingQueryHandler RankingQueryHandlerを作成
func NewRankingQueryHandler(rankingRepo repository.RankingRepository, postRepo repository.PostRepository) *RankingQueryHandler {
	return &RankingQueryHandler{rankingRepo: rankingRepo, postRepo: postRepo}
}

// HandleGetDailyRanking 集計行を上位から取り、投稿を詰めて返す。
// 削除済みの投稿は順位から除かれる
func (h *RankingQueryHandler) HandleGetDailyRanking(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetDailyRankingQuery)

	date := q.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperror.Validation("日付はYYYY-MM-DD形式で指定してください")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRankingSize
	}

	rows, err := h.rankingRepo.TopOfDate(date, limit)
	if err != nil {
		return nil, err
	}
	postIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.PostID)
	}
	posts, err := h.postRepo.FindAllByIDs(postIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}

	ranking := make([]RankedPost, 0, len(rows))
	for _, row := range rows {
		post, ok := byID[row.PostID]
		if !ok {
			continue
		}
		ranking = append(ranking, RankedPost{
			Rank:      len(ranking) + 1,
			LikeCount: row.LikeCount,
			Post:      post,
		})
	}
	return ranking, nil
}
