package controllers

import (
	"net/http"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/middlewares"
	"github.com/KodingCommunity/koding_backend/internal/queries"

	"github.com/gin-gonic/gin"
)

// CommentController コメントに関するコントローラー
type CommentController struct {
	commandBus *cqrs.CommandBus
	queryBus   *cqrs.QueryBus
}

// NewCommentController CommentControllerを作成
func NewCommentController(commandBus *cqrs.CommandBus, queryBus *cqrs.QueryBus) *CommentController {
	return &CommentController{commandBus: commandBus, queryBus: queryBus}
}

// List 投稿のコメント一覧を取得
func (c *CommentController) List(ctx *gin.Context) {
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetCommentsQuery{
		Identifier: identifier,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CommentRequest コメントの作成・修正リクエスト
type CommentRequest struct {
	Content            string   `json:"content" binding:"required"`
	MentionedNicknames []string `json:"mentioned_nicknames"`
}

// Create コメントを追加
func (c *CommentController) Create(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	identifier, ok := postIdentifier(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.AddCommentCommand{
		Identifier:         identifier,
		WriterNickname:     user.Nickname,
		Content:            req.Content,
		MentionedNicknames: req.MentionedNicknames,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

// Update コメントを修正
func (c *CommentController) Update(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ModifyCommentCommand{
		CommentID:         ctx.Param("commentId"),
		RequesterNickname: user.Nickname,
		Content:           req.Content,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Delete コメントを削除
func (c *CommentController) Delete(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.DeleteCommentCommand{
		CommentID:         ctx.Param("commentId"),
		RequesterNickname: user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "コメントを削除しました"})
}
