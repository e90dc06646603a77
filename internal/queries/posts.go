package queries

import (
	"context"
	"log"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

// クエリ名
const (
	GetPostList       = "GetPostList"
	ReadPost          = "ReadPost"
	CheckUserLikePost = "CheckUserLikePost"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetPostListQuery 掲示板の投稿一覧をカーソルページングで取得する。
// Cursorが0のときは先頭ページ
type GetPostListQuery struct {
	BoardType models.BoardType
	Cursor    uint
	PageSize  int
}

func (GetPostListQuery) QueryName() string { return GetPostList }

// PostPage 投稿一覧の1ページ
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	NextCursor uint          `json:"next_cursor"`
	HasNext    bool          `json:"has_next"`
}

// PostQueryHandler 投稿関連クエリのハンドラー
type PostQueryHandler struct {
	postRepo repository.PostRepository
	likeRepo repository.PostLikeRepository
}

// NewPostQueryHandler PostQueryHandlerを作成
func NewPostQueryHandler(postRepo repository.PostRepository, likeRepo repository.PostLikeRepository) *PostQueryHandler {
	return &PostQueryHandler{postRepo: postRepo, likeRepo: likeRepo}
}

// HandleGetPostList 新しい順の一覧と次ページのカーソルを返す
func (h *PostQueryHandler) HandleGetPostList(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetPostListQuery)

	if !models.IsValidBoardType(q.BoardType) {
		return nil, apperror.Validation("掲示板種別が正しくありません")
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// has_nextの判定のため1件余分に取る
	posts, err := h.postRepo.List(q.BoardType, q.Cursor, pageSize+1)
	if err != nil {
		return nil, err
	}

	page := PostPage{Posts: posts}
	if len(posts) > pageSize {
		page.Posts = posts[:pageSize]
		page.HasNext = true
		page.NextCursor = page.Posts[len(page.Posts)-1].ID
	}
	if page.Posts == nil {
		page.Posts = []models.Post{}
	}
	return page, nil
}

// ReadPostQuery 投稿を1件読む。閲覧数が1増える
type ReadPostQuery struct {
	Identifier models.PostIdentifier
}

func (ReadPostQuery) QueryName() string { return ReadPost }

// HandleReadPost 投稿を返し、閲覧数を加算する。
// 加算の失敗は読み取り自体を失敗させない
func (h *PostQueryHandler) HandleReadPost(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(ReadPostQuery)

	post, err := h.postRepo.FindByIdentifier(q.Identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("投稿")
	}
	if err := h.postRepo.IncreaseReadCount(q.Identifier); err != nil {
		log.Printf("閲覧数の加算に失敗しました: %v", err)
	} else {
		post.ReadCount++
	}
	return post, nil
}

// CheckUserLikePostQuery いいね済みかどうかを確認する
type CheckUserLikePostQuery struct {
	Identifier models.PostIdentifier
	Nickname   string
}

func (CheckUserLikePostQuery) QueryName() string { return CheckUserLikePost }

// HandleCheckUserLikePost いいねの有無を返す
func (h *PostQueryHandler) HandleCheckUserLikePost(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(CheckUserLikePostQuery)
	return h.likeRepo.Exists(q.Identifier, q.Nickname)
}
