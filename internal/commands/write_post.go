package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// WritePost 投稿作成コマンド名
const WritePost = "WritePost"

// WritePostCommand 新しい投稿を作成する
type WritePostCommand struct {
	BoardType       models.BoardType
	Title           string
	MarkdownContent string
	HTMLContent     string
	Tags            []string
	ImageFileKeys   []string // 本文で参照しているアップロード済み画像
	WriterNickname  string
}

func (WritePostCommand) CommandName() string { return WritePost }

// WritePostHandler WritePostCommandのハンドラー
type WritePostHandler struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	s3ImageRepo repository.S3ImageRepository
}

// NewWritePostHandler WritePostHandlerを作成
func NewWritePostHandler(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	s3ImageRepo repository.S3ImageRepository,
) *WritePostHandler {
	return &WritePostHandler{
		postRepo:    postRepo,
		userRepo:    userRepo,
		s3ImageRepo: s3ImageRepo,
	}
}

// Handle 投稿を作成し、本文で参照している画像を投稿に紐づける
func (h *WritePostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(WritePostCommand)

	if !models.IsValidBoardType(c.BoardType) {
		return nil, apperror.Validation("不正な掲示板種別です")
	}

	writer, err := h.userRepo.FindByNickname(c.WriterNickname)
	if err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if !writer.IsVerified() {
		return nil, apperror.Forbidden("本人確認が完了していないユーザーは投稿できません")
	}

	images, err := h.s3ImageRepo.FindByKeys(c.ImageFileKeys)
	if err != nil {
		return nil, err
	}
	imageURLs := make([]string, 0, len(images))
	for _, image := range images {
		imageURLs = append(imageURLs, image.FileURL)
	}

	post := &models.Post{
		BoardType:       c.BoardType,
		Title:           c.Title,
		MarkdownContent: c.MarkdownContent,
		HTMLContent:     c.HTMLContent,
		WriterNickname:  c.WriterNickname,
		Tags:            c.Tags,
		ImageURLs:       imageURLs,
	}
	if err := h.postRepo.Create(post); err != nil {
		return nil, err
	}

	if err := h.s3ImageRepo.AssociateWithPost(c.ImageFileKeys, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}
