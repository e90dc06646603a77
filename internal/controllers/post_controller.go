package controllers

import (
	"net/http"
	"strconv"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/middlewares"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/queries"

	"github.com/gin-gonic/gin"
)

// PostController 投稿に関するコントローラー
type PostController struct {
	commandBus *cqrs.CommandBus
	queryBus   *cqrs.QueryBus
}

// NewPostController PostControllerを作成
func NewPostController(commandBus *cqrs.CommandBus, queryBus *cqrs.QueryBus) *PostController {
	return &PostController{commandBus: commandBus, queryBus: queryBus}
}

// postIdentifier パスパラメータから投稿の識別子を組み立てる
func postIdentifier(ctx *gin.Context) (models.PostIdentifier, bool) {
	postID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "投稿IDが正しくありません"})
		return models.PostIdentifier{}, false
	}
	return models.PostIdentifier{
		BoardType: models.BoardType(ctx.Param("board")),
		PostID:    uint(postID),
	}, true
}

// List 掲示板の投稿一覧をカーソルページングで取得
func (c *PostController) List(ctx *gin.Context) {
	cursor, _ := strconv.ParseUint(ctx.Query("cursor"), 10, 64)
	pageSize, _ := strconv.Atoi(ctx.Query("page_size"))

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetPostListQuery{
		BoardType: models.BoardType(ctx.Param("board")),
		Cursor:    uint(cursor),
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Read 投稿を1件読む。閲覧数が1増える
func (c *PostController) Read(ctx *gin.Context) {
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.ReadPostQuery{
		Identifier: identifier,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// PostRequest 投稿の作成・修正リクエスト
type PostRequest struct {
	Title           string   `json:"title" binding:"required"`
	MarkdownContent string   `json:"markdown_content" binding:"required"`
	HTMLContent     string   `json:"html_content"`
	Tags            []string `json:"tags"`
	ImageFileKeys   []string `json:"image_file_keys"`
}

// Write 新しい投稿を作成
func (c *PostController) Write(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	var req PostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.WritePostCommand{
		BoardType:       models.BoardType(ctx.Param("board")),
		Title:           req.Title,
		MarkdownContent: req.MarkdownContent,
		HTMLContent:     req.HTMLContent,
		Tags:            req.Tags,
		ImageFileKeys:   req.ImageFileKeys,
		WriterNickname:  user.Nickname,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

// Modify 投稿を修正
func (c *PostController) Modify(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	var req PostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ModifyPostCommand{
		Identifier:        identifier,
		RequesterNickname: user.Nickname,
		Title:             req.Title,
		MarkdownContent:   req.MarkdownContent,
		HTMLContent:       req.HTMLContent,
		Tags:              req.Tags,
		ImageFileKeys:     req.ImageFileKeys,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Delete 投稿を削除
func (c *PostController) Delete(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.DeletePostCommand{
		Identifier:        identifier,
		RequesterNickname: user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "投稿を削除しました"})
}

// Like 投稿にいいねを付ける。2回目以降は何も起きない
func (c *PostController) Like(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.LikePostCommand{
		Identifier: identifier,
		Nickname:   user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "いいねしました"})
}

// Unlike いいねを取り消す
func (c *PostController) Unlike(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.UnlikePostCommand{
		Identifier: identifier,
		Nickname:   user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "いいねを取り消しました"})
}

// HasLiked いいね済みかどうか
func (c *PostController) HasLiked(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.CheckUserLikePostQuery{
		Identifier: identifier,
		Nickname:   user.Nickname,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"liked": result})
}

// Scrap 投稿をスクラップする。2回目以降は何も起きない
func (c *PostController) Scrap(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ScrapPostCommand{
		Identifier: identifier,
		Nickname:   user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "スクラップしました"})
}

// Unscrap スクラップを解除する
func (c *PostController) Unscrap(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.UnscrapPostCommand{
		Identifier: identifier,
		Nickname:   user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "スクラップを解除しました"})
}
