package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// S3ImageRepository アップロード画像の記録を扱うインターフェース
type S3ImageRepository interface {
	Create(image *models.S3Image) error
	FindByKeys(fileKeys []string) ([]models.S3Image, error)
	ListByPost(postID uint) ([]models.S3Image, error)
	ListUnassociatedOf(ownerNickname string) ([]models.S3Image, error)
	ListAvatarOf(ownerNickname string) ([]models.S3Image, error)
	AssociateWithPost(fileKeys []string, postID uint) error
	RemoveByKeys(fileKeys []string) error
}

// s3ImageRepository S3ImageRepositoryの実装
type s3ImageRepository struct {
	base *BaseRepository[models.S3Image]
}

// NewS3ImageRepository S3ImageRepositoryを作成
func NewS3ImageRepository(db *gorm.DB) S3ImageRepository {
	return &s3ImageRepository{base: NewBaseRepository[models.S3Image](db, "file_key")}
}

// Create アップロード記録を作成
func (r *s3ImageRepository) Create(image *models.S3Image) error {
	return r.base.DB().Create(image).Error
}

// FindByKeys ファイルキーで記録を検索
func (r *s3ImageRepository) FindByKeys(fileKeys []string) ([]models.S3Image, error) {
	if len(fileKeys) == 0 {
		return nil, nil
	}
	return r.base.FindAll(FindOptions{}, In("file_key", fileKeys))
}

// ListByPost 投稿に紐づく画像の記録を取得
func (r *s3ImageRepository) ListByPost(postID uint) ([]models.S3Image, error) {
	return r.base.FindAll(FindOptions{}, Eq("post_id", postID))
}

// ListUnassociatedOf 投稿に紐づいていないアップロード記録を取得
func (r *s3ImageRepository) ListUnassociatedOf(ownerNickname string) ([]models.S3Image, error) {
	var images []models.S3Image
	err := r.base.DB().
		Where("owner_nickname = ? AND post_id IS NULL AND kind = ?", ownerNickname, models.S3ImagePost).
		Find(&images).Error
	return images, err
}

// ListAvatarOf ユーザーのアバター画像の記録を取得
func (r *s3ImageRepository) ListAvatarOf(ownerNickname string) ([]models.S3Image, error) {
	return r.base.FindAll(FindOptions{},
		Eq("owner_nickname", ownerNickname), Eq("kind", models.S3ImageAvatar))
}

// AssociateWithPost アップロード記録を投稿に紐づける
func (r *s3ImageRepository) AssociateWithPost(fileKeys []string, postID uint) error {
	if len(fileKeys) == 0 {
		return nil
	}
	return r.base.DB().Model(&models.S3Image{}).
		Where("file_key IN ?", fileKeys).
		Update("post_id", postID).Error
}

// RemoveByKeys ファイルキーで記録を削除
func (r *s3ImageRepository) RemoveByKeys(fileKeys []string) error {
	if len(fileKeys) == 0 {
		return nil
	}
	return r.base.DB().Where("file_key IN ?", fileKeys).Delete(&models.S3Image{}).Error
}
