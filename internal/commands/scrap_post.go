package commands

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// コマンド名
const (
	ScrapPost   = "ScrapPost"
	UnscrapPost = "UnscrapPost"
)

// ScrapPostCommand 投稿をスクラップする
type ScrapPostCommand struct {
	Identifier models.PostIdentifier
	Nickname   string
}

func (ScrapPostCommand) CommandName() string { return ScrapPost }

// ScrapPostHandler ScrapPostCommandのハンドラー。
// upsertの冪等トグルとリトライはPostScrapServiceが担う
type ScrapPostHandler struct {
	postRepo     repository.PostRepository
	scrapService services.PostScrapService
}

// NewScrapPostHandler ScrapPostHandlerを作成
func NewScrapPostHandler(postRepo repository.PostRepository, scrapService services.PostScrapService) *ScrapPostHandler {
	return &ScrapPostHandler{postRepo: postRepo, scrapService: scrapService}
}

// Handle 投稿の存在を確認してからスクラップする
func (h *ScrapPostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ScrapPostCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}
	return nil, h.scrapService.ScrapPost(ctx, c.Identifier, c.Nickname)
}

// UnscrapPostCommand スクラップを解除する
type UnscrapPostCommand struct {
	Identifier models.PostIdentifier
	Nickname   string
}

func (UnscrapPostCommand) CommandName() string { return UnscrapPost }

// UnscrapPostHandler UnscrapPostCommandのハンドラー
type UnscrapPostHandler struct {
	scrapService services.PostScrapService
}

// NewUnscrapPostHandler UnscrapPostHandlerを作成
func NewUnscrapPostHandler(scrapService services.PostScrapService) *UnscrapPostHandler {
	return &UnscrapPostHandler{scrapService: scrapService}
}

// Handle スクラップしていない投稿の解除は何もしない（冪等）
func (h *UnscrapPostHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(UnscrapPostCommand)
	return nil, h.scrapService.UnscrapPost(ctx, c.Identifier, c.Nickname)
}
