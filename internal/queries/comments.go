package queries

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// GetComments コメント一覧クエリ名
const GetComments = "GetComments"

// GetCommentsQuery 投稿のコメント一覧を取得する
type GetCommentsQuery struct {
	Identifier models.PostIdentifier
}

func (GetCommentsQuery) QueryName() string { return GetComments }

// CommentQueryHandler コメント関連クエリのハンドラー
type CommentQueryHandler struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentQueryHandler CommentQueryHandlerを作成
func NewCommentQueryHandler(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentQueryHandler {
	return &CommentQueryHandler{commentRepo: commentRepo, postRepo: postRepo}
}

// HandleGetComments 投稿のコメントを古い順で返す
func (h *CommentQueryHandler) HandleGetComments(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetCommentsQuery)

	post, err := h.postRepo.FindByIdentifier(q.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}

	comments, err := h.commentRepo.ListByPost(q.Identifier)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}
