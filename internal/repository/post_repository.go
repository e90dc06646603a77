package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// PostRepository 投稿に関するデータベース操作を行うインターフェース
type PostRepository interface {
	Create(post *models.Post) error
	FindByIdentifier(identifier models.PostIdentifier) (*models.Post, error)
	FindAllByIDs(postIDs []uint) ([]models.Post, error)
	List(boardType models.BoardType, cursor uint, pageSize int) ([]models.Post, error)
	ListByWriters(writerNicknames []string, cursor uint, pageSize int) ([]models.Post, error)
	ListByWriter(writerNickname string, boardType models.BoardType) ([]models.Post, error)
	Update(post *models.Post) error
	Remove(post *models.Post) (bool, error)
	IncreaseLikeCount(identifier models.PostIdentifier) error
	DecreaseLikeCount(identifier models.PostIdentifier) error
	IncreaseScrapCount(identifier models.PostIdentifier) error
	DecreaseScrapCount(identifier models.PostIdentifier) error
	IncreaseCommentCount(identifier models.PostIdentifier) error
	DecreaseCommentCount(identifier models.PostIdentifier) error
	IncreaseReadCount(identifier models.PostIdentifier) error
}

// postRepository PostRepositoryの実装
type postRepository struct {
	base *BaseRepository[models.Post]
}

// NewPostRepository PostRepositoryを作成
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{base: NewBaseRepository[models.Post](db, "id")}
}

// Create 新しい投稿を作成
func (r *postRepository) Create(post *models.Post) error {
	return r.base.DB().Create(post).Error
}

// FindByIdentifier 掲示板種別とIDで投稿を検索。見つからない場合はnil
func (r *postRepository) FindByIdentifier(identifier models.PostIdentifier) (*models.Post, error) {
	return r.base.FindOne(Eq("id", identifier.PostID), Eq("board_type", identifier.BoardType))
}

// FindAllByIDs 複数IDの投稿をまとめて取得
func (r *postRepository) FindAllByIDs(postIDs []uint) ([]models.Post, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	return r.base.FindAll(FindOptions{}, In("id", postIDs))
}

// List 掲示板の投稿一覧をカーソルページングで取得（新しい順）
func (r *postRepository) List(boardType models.BoardType, cursor uint, pageSize int) ([]models.Post, error) {
	conds := []Condition{Eq("board_type", boardType)}
	if cursor > 0 {
		conds = append(conds, Lt("id", cursor))
	}
	return r.base.FindAll(FindOptions{SortBy: "id", Desc: true, Limit: pageSize}, conds...)
}

// ListByWriters 指定した書き手たちの投稿をカーソルページングで取得
func (r *postRepository) ListByWriters(writerNicknames []string, cursor uint, pageSize int) ([]models.Post, error) {
	if len(writerNicknames) == 0 {
		return nil, nil
	}
	conds := []Condition{In("writer_nickname", writerNicknames)}
	if cursor > 0 {
		conds = append(conds, Lt("id", cursor))
	}
	return r.base.FindAll(FindOptions{SortBy: "id", Desc: true, Limit: pageSize}, conds...)
}

// ListByWriter 1人の書き手の投稿一覧を取得。boardTypeが空なら全掲示板
func (r *postRepository) ListByWriter(writerNickname string, boardType models.BoardType) ([]models.Post, error) {
	conds := []Condition{Eq("writer_nickname", writerNickname)}
	if boardType != "" {
		conds = append(conds, Eq("board_type", boardType))
	}
	return r.base.FindAll(FindOptions{SortBy: "id", Desc: true}, conds...)
}

// Update 投稿を更新
func (r *postRepository) Update(post *models.Post) error {
	return r.base.Update(post)
}

// Remove 投稿を削除。削除が起きたかどうかを返す
func (r *postRepository) Remove(post *models.Post) (bool, error) {
	return r.base.Remove(post)
}

// adjustCounter カウンターをアトミックに増減する
func (r *postRepository) adjustCounter(identifier models.PostIdentifier, column string, delta int) error {
	return r.base.DB().Model(&models.Post{}).
		Where("id = ? AND board_type = ?", identifier.PostID, identifier.BoardType).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

// IncreaseLikeCount いいね数を1増やす
func (r *postRepository) IncreaseLikeCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "like_count", 1)
}

// DecreaseLikeCount いいね数を1減らす
func (r *postRepository) DecreaseLikeCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "like_count", -1)
}

// IncreaseScrapCount スクラップ数を1増やす
func (r *postRepository) IncreaseScrapCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "scrap_count", 1)
}

// DecreaseScrapCount スクラップ数を1減らす
func (r *postRepository) DecreaseScrapCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "scrap_count", -1)
}

// IncreaseCommentCount コメント数を1増やす
func (r *postRepository) IncreaseCommentCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "comment_count", 1)
}

// DecreaseCommentCount コメント数を1減らす
func (r *postRepository) DecreaseCommentCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "comment_count", -1)
}

// IncreaseReadCount 閲覧数を1増やす
func (r *postRepository) IncreaseReadCount(identifier models.PostIdentifier) error {
	return r.adjustCounter(identifier, "read_count", 1)
}
