package commands

import (
	"context"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"

	"github.com/rs/xid"
)

// コマンド名
const (
	AddComment    = "AddComment"
	ModifyComment = "ModifyComment"
	DeleteComment = "DeleteComment"
)

// AddCommentCommand 投稿にコメントを追加する
type AddCommentCommand struct {
	Identifier         models.PostIdentifier
	WriterNickname     string
	Content            string
	MentionedNicknames []string
}

func (AddCommentCommand) CommandName() string { return AddComment }

// AddCommentHandler AddCommentCommandのハンドラー
type AddCommentHandler struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	publisher   cqrs.EventPublisher
}

// NewAddCommentHandler AddCommentHandlerを作成
func NewAddCommentHandler(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher cqrs.EventPublisher,
) *AddCommentHandler {
	return &AddCommentHandler{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Handle 親投稿と書き手の存在を確認してからコメントを作成する。
// 投稿のコメント数はCommentAddedイベントを受けたハンドラーが加算する
func (h *AddCommentHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(AddCommentCommand)

	post, err := h.postRepo.FindByIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}

	writer, err := h.userRepo.FindByNickname(c.WriterNickname)
	if err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, apperror.NotFound("ユーザー")
	}
	if !writer.IsVerified() {
		return nil, apperror.Forbidden("本人確認が完了していないユーザーはコメントできません")
	}

	comment := &models.Comment{
		CommentID:          xid.New().String(),
		BoardType:          c.Identifier.BoardType,
		PostID:             c.Identifier.PostID,
		WriterNickname:     c.WriterNickname,
		Content:            c.Content,
		MentionedNicknames: c.MentionedNicknames,
	}
	if err := h.commentRepo.Persist(comment); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.CommentAddedEvent{
		PostIdentifier: c.Identifier,
		CommentID:      comment.CommentID,
		WriterNickname: c.WriterNickname,
		CreatedAt:      time.Now(),
	})
	return comment, nil
}

// ModifyCommentCommand コメントを修正する
type ModifyCommentCommand struct {
	CommentID         string
	RequesterNickname string
	Content           string
}

func (ModifyCommentCommand) CommandName() string { return ModifyComment }

// ModifyCommentHandler ModifyCommentCommandのハンドラー
type ModifyCommentHandler struct {
	commentRepo repository.CommentRepository
}

// NewModifyCommentHandler ModifyCommentHandlerを作成
func NewModifyCommentHandler(commentRepo repository.CommentRepository) *ModifyCommentHandler {
	return &ModifyCommentHandler{commentRepo: commentRepo}
}

// Handle 所有者だけが修正できる
func (h *ModifyCommentHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(ModifyCommentCommand)

	comment, err := h.commentRepo.FindByCommentID(c.CommentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperror.NotFound("コメント")
	}
	if !comment.IsOwnedBy(c.RequesterNickname) {
		return nil, apperror.Forbidden("自分のコメントだけを修正できます")
	}

	comment.Content = c.Content
	if err := h.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteCommentCommand コメントを削除する
type DeleteCommentCommand struct {
	CommentID         string
	RequesterNickname string
}

func (DeleteCommentCommand) CommandName() string { return DeleteComment }

// DeleteCommentHandler DeleteCommentCommandのハンドラー
type DeleteCommentHandler struct {
	commentRepo repository.CommentRepository
	publisher   cqrs.EventPublisher
}

// NewDeleteCommentHandler DeleteCommentHandlerを作成
func NewDeleteCommentHandler(commentRepo repository.CommentRepository, publisher cqrs.EventPublisher) *DeleteCommentHandler {
	return &DeleteCommentHandler{commentRepo: commentRepo, publisher: publisher}
}

// Handle 所有者だけが削除できる。削除が起きた場合のみイベントを発行する
func (h *DeleteCommentHandler) Handle(ctx context.Context, cmd cqrs.Command) (interface{}, error) {
	c := cmd.(DeleteCommentCommand)

	comment, err := h.commentRepo.FindByCommentID(c.CommentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperror.NotFound("コメント")
	}
	if !comment.IsOwnedBy(c.RequesterNickname) {
		return nil, apperror.Forbidden("自分のコメントだけを削除できます")
	}

	removed, err := h.commentRepo.Remove(comment)
	if err != nil {
		return nil, err
	}
	if removed {
		h.publisher.Publish(ctx, events.CommentDeletedEvent{
			PostIdentifier: comment.PostIdentifier(),
			CommentID:      comment.CommentID,
			DeletedAt:      time.Now(),
		})
	}
	return nil, nil
}
