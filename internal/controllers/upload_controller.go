package controllers

import (
	"net/http"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/middlewares"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// maxUploadSize アップロードの上限（32MB）
const maxUploadSize = 32 << 20

// UploadController 画像アップロードに関するコントローラー
type UploadController struct {
	commandBus *cqrs.CommandBus
	s3Service  services.S3Service
	imageRepo  repository.S3ImageRepository
}

// NewUploadController UploadControllerを作成
func NewUploadController(
	commandBus *cqrs.CommandBus,
	s3Service services.S3Service,
	imageRepo repository.S3ImageRepository,
) *UploadController {
	return &UploadController{
		commandBus: commandBus,
		s3Service:  s3Service,
		imageRepo:  imageRepo,
	}
}

// UploadPostImage 投稿本文で使う画像をアップロード。
// 返されたfile_keyを投稿の作成・修正リクエストに含める
func (c *UploadController) UploadPostImage(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	if err := ctx.Request.ParseMultipartForm(maxUploadSize); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "マルチパートフォームの解析に失敗しました"})
		return
	}
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ファイルが必要です"})
		return
	}
	defer file.Close()

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.SavePostImageCommand{
		OwnerNickname: user.Nickname,
		FileName:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Body:          file,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

// UploadAvatar プロフィール画像をアップロードしてプロフィールに反映する
func (c *UploadController) UploadAvatar(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	if err := ctx.Request.ParseMultipartForm(maxUploadSize); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "マルチパートフォームの解析に失敗しました"})
		return
	}
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ファイルが必要です"})
		return
	}
	defer file.Close()

	fileKey, fileURL, err := c.s3Service.Upload(models.S3ImageAvatar, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if err := c.imageRepo.Create(&models.S3Image{
		FileKey:       fileKey,
		FileURL:       fileURL,
		OwnerNickname: user.Nickname,
		Kind:          models.S3ImageAvatar,
	}); err != nil {
		respondError(ctx, err)
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ChangeProfileCommand{
		Nickname:  user.Nickname,
		AvatarURL: &fileURL,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
