package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// CommentRepository コメントに関するデータベース操作を行うインターフェース
type CommentRepository interface {
	Persist(comment *models.Comment) error
	Update(comment *models.Comment) error
	FindByCommentID(commentID string) (*models.Comment, error)
	ListByPost(identifier models.PostIdentifier) ([]models.Comment, error)
	ListByWriter(writerNickname string, boardType models.BoardType) ([]models.Comment, error)
	Remove(comment *models.Comment) (bool, error)
	RemoveOrphansOf(identifier models.PostIdentifier) error
}

// commentRepository CommentRepositoryの実装
type commentRepository struct {
	base *BaseRepository[models.Comment]
}

// NewCommentRepository CommentRepositoryを作成
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{base: NewBaseRepository[models.Comment](db, "comment_id")}
}

// Persist コメントをcomment_idをキーにupsertする
func (r *commentRepository) Persist(comment *models.Comment) error {
	return r.base.Persist(comment)
}

// Update コメントを更新。対象がない場合は何もしない
func (r *commentRepository) Update(comment *models.Comment) error {
	return r.base.Update(comment)
}

// FindByCommentID コメントIDで検索。見つからない場合はnil
func (r *commentRepository) FindByCommentID(commentID string) (*models.Comment, error) {
	return r.base.FindOne(Eq("comment_id", commentID))
}

// ListByPost 投稿のコメント一覧を取得（古い順）
func (r *commentRepository) ListByPost(identifier models.PostIdentifier) ([]models.Comment, error) {
	return r.base.FindAll(FindOptions{SortBy: "id"},
		Eq("post_id", identifier.PostID), Eq("board_type", identifier.BoardType))
}

// ListByWriter 書き手のコメント一覧を取得
func (r *commentRepository) ListByWriter(writerNickname string, boardType models.BoardType) ([]models.Comment, error) {
	conds := []Condition{Eq("writer_nickname", writerNickname)}
	if boardType != "" {
		conds = append(conds, Eq("board_type", boardType))
	}
	return r.base.FindAll(FindOptions{SortBy: "id", Desc: true}, conds...)
}

// Remove コメントを削除。削除が起きたかどうかを返す
func (r *commentRepository) Remove(comment *models.Comment) (bool, error) {
	res := r.base.DB().Where("comment_id = ?", comment.CommentID).Delete(&models.Comment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveOrphansOf 親投稿が削除されたコメントをまとめて削除する
func (r *commentRepository) RemoveOrphansOf(identifier models.PostIdentifier) error {
	return r.base.DB().
		Where("post_id = ? AND board_type = ?", identifier.PostID, identifier.BoardType).
		Delete(&models.Comment{}).Error
}
