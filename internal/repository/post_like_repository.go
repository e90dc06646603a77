package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// PostLikeRepository いいねの中間テーブルを扱うインターフェース
type PostLikeRepository interface {
	Insert(like *models.PostLike) (bool, error)
	Remove(identifier models.PostIdentifier, nickname string) (*models.PostLike, error)
	Exists(identifier models.PostIdentifier, nickname string) (bool, error)
	ListByNickname(nickname string) ([]models.PostLike, error)
	RemoveOrphansOf(identifier models.PostIdentifier) error
}

// postLikeRepository PostLikeRepositoryの実装
type postLikeRepository struct {
	base *BaseRepository[models.PostLike]
}

// NewPostLikeRepository PostLikeRepositoryを作成
func NewPostLikeRepository(db *gorm.DB) PostLikeRepository {
	return &postLikeRepository{base: NewBaseRepository[models.PostLike](db, "nickname", "post_id")}
}

// Insert いいねを追加する。(nickname, post_id)が未登録で
// 実際に挿入が起きた場合のみtrueを返す
func (r *postLikeRepository) Insert(like *models.PostLike) (bool, error) {
	return r.base.PersistIfAbsent(like)
}

// Remove いいねを削除し、削除された行を返す。存在しなければnil
func (r *postLikeRepository) Remove(identifier models.PostIdentifier, nickname string) (*models.PostLike, error) {
	existing, err := r.base.FindOne(Eq("nickname", nickname), Eq("post_id", identifier.PostID))
	if err != nil || existing == nil {
		return nil, err
	}
	deleted, err := r.base.Remove(existing)
	if err != nil {
		return nil, err
	}
	if !deleted {
		// 並行リクエストが先に削除した場合
		return nil, nil
	}
	return existing, nil
}

// Exists いいね済みかどうか
func (r *postLikeRepository) Exists(identifier models.PostIdentifier, nickname string) (bool, error) {
	count, err := r.base.Count(Eq("nickname", nickname), Eq("post_id", identifier.PostID))
	return count > 0, err
}

// ListByNickname ユーザーのいいね一覧を取得（古い順）
func (r *postLikeRepository) ListByNickname(nickname string) ([]models.PostLike, error) {
	return r.base.FindAll(FindOptions{SortBy: "created_at"}, Eq("nickname", nickname))
}

// RemoveOrphansOf 親投稿が削除されたいいねをまとめて削除する
func (r *postLikeRepository) RemoveOrphansOf(identifier models.PostIdentifier) error {
	return r.base.DB().
		Where("post_id = ? AND board_type = ?", identifier.PostID, identifier.BoardType).
		Delete(&models.PostLike{}).Error
}
