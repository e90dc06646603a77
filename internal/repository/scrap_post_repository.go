package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// ScrapPostRepository スクラップの中間テーブルを扱うインターフェース
type ScrapPostRepository interface {
	Insert(scrap *models.ScrapPost) (bool, error)
	Remove(identifier models.PostIdentifier, nickname string) (*models.ScrapPost, error)
	Exists(identifier models.PostIdentifier, nickname string) (bool, error)
	ListByNickname(nickname string) ([]models.ScrapPost, error)
	RemoveOrphansOf(identifier models.PostIdentifier) error
}

// scrapPostRepository ScrapPostRepositoryの実装
type scrapPostRepository struct {
	base *BaseRepository[models.ScrapPost]
}

// NewScrapPostRepository ScrapPostRepositoryを作成
func NewScrapPostRepository(db *gorm.DB) ScrapPostRepository {
	return &scrapPostRepository{base: NewBaseRepository[models.ScrapPost](db, "nickname", "post_id")}
}

// Insert スクラップを追加する。実際に挿入が起きた場合のみtrueを返す
func (r *scrapPostRepository) Insert(scrap *models.ScrapPost) (bool, error) {
	return r.base.PersistIfAbsent(scrap)
}

// Remove スクラップを削除し、削除された行を返す。存在しなければnil
func (r *scrapPostRepository) Remove(identifier models.PostIdentifier, nickname string) (*models.ScrapPost, error) {
	existing, err := r.base.FindOne(Eq("nickname", nickname), Eq("post_id", identifier.PostID))
	if err != nil || existing == nil {
		return nil, err
	}
	deleted, err := r.base.Remove(existing)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, nil
	}
	return existing, nil
}

// Exists スクラップ済みかどうか
func (r *scrapPostRepository) Exists(identifier models.PostIdentifier, nickname string) (bool, error) {
	count, err := r.base.Count(Eq("nickname", nickname), Eq("post_id", identifier.PostID))
	return count > 0, err
}

// ListByNickname ユーザーのスクラップ一覧を取得（古い順）
func (r *scrapPostRepository) ListByNickname(nickname string) ([]models.ScrapPost, error) {
	return r.base.FindAll(FindOptions{SortBy: "created_at"}, Eq("nickname", nickname))
}

// RemoveOrphansOf 親投稿が削除されたスクラップをまとめて削除する
func (r *scrapPostRepository) RemoveOrphansOf(identifier models.PostIdentifier) error {
	return r.base.DB().
		Where("post_id = ? AND board_type = ?", identifier.PostID, identifier.BoardType).
		Delete(&models.ScrapPost{}).Error
}
