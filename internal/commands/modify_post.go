package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// ModifyPost 投稿修正コマンド名
const ModifyPost = "ModifyPost"

// ModifyPostCommand 投稿を修正する
type ModifyPostCommand struct {
	Identifier        models.PostIdentifier
	RequesterNickname string
	Title             string
	MarkdownContent   string
	HTMLContent       string
	Tags              []string
	ImageFileKeys     []string // 修正後の本文で参照している画像
}

func (ModifyPostCommand) CommandName() string { return ModifyPost }

// ModifyPostHandler ModifyPostCommandのハンドラー
type ModifyPostHandler struct {
	postRepo    repository.PostRepository
	s3ImageRepo repository.S3ImageRepository
	s3Service   services.S3Service
}

// NewModifyPostHandler ModifyPostHandlerを作成
func NewModifyPostHandler(
	postRepo repository.PostRepository,
	s3ImageRepo repository.S3ImageRepository,
	s3Service services.S3Service,
) *ModifyPostHandler {
	return &ModifyPostHandler{
		postRepo:    postRepo,
		s3ImageRepo: s3ImageRepo,
		s3Service:   s3Service,
	}
}

// Handle 所有者だけが修正できる。参照されなくなった画像はS3から回収する
func (h *ModifyPostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ModifyPostCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}
	if !post.IsOwnedBy(c.RequesterNickname) {
		return nil, apperror.Forbidden("自分の投稿だけを修正できます")
	}

	// 参照されなくなった画像を回収する
	previousImages, err := h.s3ImageRepo.ListByPost(post.ID)
	if err != nil {
		return nil, err
	}
	kept := make(map[string]bool, len(c.ImageFileKeys))
	for _, fileKey := range c.ImageFileKeys {
		kept[fileKey] = true
	}
	var orphanKeys []string
	for _, image := range previousImages {
		if !kept[image.FileKey] {
			orphanKeys = append(orphanKeys, image.FileKey)
		}
	}
	if len(orphanKeys) > 0 {
		if err := h.s3Service.DeleteImages(models.S3ImagePost, orphanKeys); err != nil {
			return nil, err
		}
		if err := h.s3ImageRepo.RemoveByKeys(orphanKeys); err != nil {
			return nil, err
		}
	}
	if err := h.s3ImageRepo.AssociateWithPost(c.ImageFileKeys, post.ID); err != nil {
		return nil, err
	}

	images, err := h.s3ImageRepo.FindByKeys(c.ImageFileKeys)
	if err != nil {
		return nil, err
	}
	imageURLs := make([]string, 0, len(images))
	for _, image := range images {
		imageURLs = append(imageURLs, image.FileURL)
	}

	post.Title = c.Title
	post.MarkdownContent = c.MarkdownContent
	post.HTMLContent = c.HTMLContent
	post.Tags = c.Tags
	post.ImageURLs = imageURLs

	if err := h.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}
