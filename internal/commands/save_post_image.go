package commands

import (
	"context"
	"io"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// SavePostImage 投稿画像アップロードコマンド名
const SavePostImage = "SavePostImage"

// SavePostImageCommand 投稿本文で使う画像をアップロードする。
// 投稿作成前に呼ばれるため、この時点ではどの投稿にも紐付かない
type SavePostImageCommand struct {
	OwnerNickname string
	FileName      string
	ContentType   string
	Body          io.Reader
}

func (SavePostImageCommand) CommandName() string { return SavePostImage }

// SavedImage アップロード結果
type SavedImage struct {
	FileKey string `json:"fileKey"`
	FileURL string `json:"fileUrl"`
}

// SavePostImageHandler SavePostImageCommandのハンドラー
type SavePostImageHandler struct {
	userRepo  repository.UserRepository
	imageRepo repository.S3ImageRepository
	s3Service services.S3Service
}

// NewSavePostImageHandler SavePostImageHandlerを作成
func NewSavePostImageHandler(
	userRepo repository.UserRepository,
	imageRepo repository.S3ImageRepository,
	s3Service services.S3Service,
) *SavePostImageHandler {
	return &SavePostImageHandler{userRepo: userRepo, imageRepo: imageRepo, s3Service: s3Service}
}

// Handle S3にアップロードしてから所有者付きの画像レコードを残す。
// 投稿への紐付けはWritePost/ModifyPostが行う
func (h *SavePostImageHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(SavePostImageCommand)

	owner, err := h.userRepo.FindByNickname(c.OwnerNickname)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if !owner.IsVerified() {
		return nil, apperror.Forbidden("本人確認が完了していないユーザーは画像をアップロードできません")
	}

	fileKey, fileURL, err := h.s3Service.Upload(models.S3ImagePost, c.FileName, c.ContentType, c.Body)
	if err != nil {
		return nil, err
	}

	image := &models.S3Image{
		FileKey:       fileKey,
		FileURL:       fileURL,
		OwnerNickname: c.OwnerNickname,
		Kind:          models.S3ImagePost,
	}
	if err := h.imageRepo.Create(image); err != nil {
		return nil, err
	}
	return SavedImage{FileKey: fileKey, FileURL: fileURL}, nil
}
