package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingRepository 日次いいね集計を扱うインターフェース
type RankingRepository interface {
	IncreaseLikeCount(aggregationDate string, identifier models.PostIdentifier) error
	DecreaseLikeCount(aggregationDate string, identifier models.PostIdentifier) error
	TopOfDate(aggregationDate string, limit int) ([]models.PostLikeDailyRanking, error)
}

// rankingRepository RankingRepositoryの実装
type rankingRepository struct {
	base *BaseRepository[models.PostLikeDailyRanking]
}

// NewRankingRepository RankingRepositoryを作成
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{
		base: NewBaseRepository[models.PostLikeDailyRanking](db, "aggregation_date", "post_id"),
	}
}

// IncreaseLikeCount 集計行をupsertしてカウントを1増やす
func (r *rankingRepository) IncreaseLikeCount(aggregationDate string, identifier models.PostIdentifier) error {
	row := &models.PostLikeDailyRanking{
		AggregationDate: aggregationDate,
		PostID:          identifier.PostID,
		BoardType:       identifier.BoardType,
		LikeCount:       1,
	}
	return r.base.DB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "aggregation_date"}, {Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"like_count": gorm.Expr("like_count + 1"),
		}),
	}).Create(row).Error
}

// DecreaseLikeCount 集計行のカウントを1減らす。行がなければ何もしない
func (r *rankingRepository) DecreaseLikeCount(aggregationDate string, identifier models.PostIdentifier) error {
	return r.base.DB().Model(&models.PostLikeDailyRanking{}).
		Where("aggregation_date = ? AND post_id = ? AND like_count > 0", aggregationDate, identifier.PostID).
		Update("like_count", gorm.Expr("like_count - 1")).Error
}

// TopOfDate 指定日のいいね数上位を取得
func (r *rankingRepository) TopOfDate(aggregationDate string, limit int) ([]models.PostLikeDailyRanking, error) {
	return r.base.FindAll(
		FindOptions{SortBy: "like_count", Desc: true, Limit: limit},
		Eq("aggregation_date", aggregationDate),
	)
}
