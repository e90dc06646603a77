package queries

import (
	"context"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// クエリ名
const (
	GetUserInfo        = "GetUserInfo"
	CheckExistence     = "CheckExistence"
	GetFollowingUsers  = "GetFollowingUsers"
	GetFollowerUsers   = "GetFollowerUsers"
	CheckFollowing     = "CheckFollowing"
	GetFollowingPosts  = "GetFollowingPosts"
	GetScrapPosts      = "GetScrapPosts"
	GetLikePosts       = "GetLikePosts"
	GetWritingPosts    = "GetWritingPosts"
	GetWritingComments = "GetWritingComments"
)

// GetUserInfoQuery ユーザープロフィールを取得する。
// RequesterNicknameが本人でない場合、非公開のURLは隠される
type GetUserInfoQuery struct {
	Nickname          string
	RequesterNickname string
}

func (GetUserInfoQuery) QueryName() string { return GetUserInfo }

// UserQueryHandler ユーザー関連クエリのハンドラー
type UserQueryHandler struct {
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.PostLikeRepository
	scrapService services.PostScrapService
}

// NewUserQueryHandler UserQueryHandlerを作成
func NewUserQueryHandler(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.PostLikeRepository,
	scrapService services.PostScrapService,
) *UserQueryHandler {
	return &UserQueryHandler{
		userRepo:     userRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		likeRepo:     likeRepo,
		scrapService: scrapService,
	}
}

// maskPrivateFields 本人以外には非公開設定のURLを見せない
func maskPrivateFields(user *models.User, requesterNickname string) {
	if user.Nickname == requesterNickname {
		return
	}
	if !user.IsBlogURLPublic {
		user.BlogURL = ""
	}
	if !user.IsGithubURLPublic {
		user.GithubURL = ""
	}
	if !user.IsPortfolioURLPublic {
		user.PortfolioURL = ""
	}
}

// HandleGetUserInfo プロフィールとフォロー関係をまとめて返す
func (h *UserQueryHandler) HandleGetUserInfo(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetUserInfoQuery)

	user, err := h.userRepo.FindByNickname(q.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() {
		return nil, apperror.NotFound("ユーザー")
	}

	following, err := h.userRepo.FollowingNicknames(q.Nickname)
	if err != nil {
		return nil, err
	}
	followers, err := h.userRepo.FollowerNicknames(q.Nickname)
	if err != nil {
		return nil, err
	}
	user.FollowingNicknames = following
	user.FollowerNicknames = followers
	maskPrivateFields(user, q.RequesterNickname)
	return user, nil
}

// CheckExistenceQuery メールアドレス・ニックネームの使用状況を確認する。
// サインアップフォームの事前チェックに使う
type CheckExistenceQuery struct {
	Email    string
	Nickname string
}

func (CheckExistenceQuery) QueryName() string { return CheckExistence }

// ExistenceResult 使用状況の確認結果
type ExistenceResult struct {
	EmailUsed    bool `json:"email_used"`
	NicknameUsed bool `json:"nickname_used"`
}

// HandleCheckExistence 空の条件はチェックしない
func (h *UserQueryHandler) HandleCheckExistence(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(CheckExistenceQuery)

	result := ExistenceResult{}
	if q.Email != "" {
		used, err := h.userRepo.ExistsByEmail(q.Email)
		if err != nil {
			return nil, err
		}
		result.EmailUsed = used
	}
	if q.Nickname != "" {
		used, err := h.userRepo.ExistsByNickname(q.Nickname)
		if err != nil {
			return nil, err
		}
		result.NicknameUsed = used
	}
	return result, nil
}

// GetFollowingUsersQuery フォローしているユーザー一覧を取得する
type GetFollowingUsersQuery struct {
	Nickname string
}

func (GetFollowingUsersQuery) QueryName() string { return GetFollowingUsers }

// GetFollowerUsersQuery フォローされているユーザー一覧を取得する
type GetFollowerUsersQuery struct {
	Nickname string
}

func (GetFollowerUsersQuery) QueryName() string { return GetFollowerUsers }

// HandleGetFollowingUsers フォロー中のユーザーをフォロー順で返す
func (h *UserQueryHandler) HandleGetFollowingUsers(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetFollowingUsersQuery)
	nicknames, err := h.userRepo.FollowingNicknames(q.Nickname)
	if err != nil {
		return nil, err
	}
	return h.usersInOrder(nicknames)
}

// HandleGetFollowerUsers フォロワーをフォローされた順で返す
func (h *UserQueryHandler) HandleGetFollowerUsers(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetFollowerUsersQuery)
	nicknames, err := h.userRepo.FollowerNicknames(q.Nickname)
	if err != nil {
		return nil, err
	}
	return h.usersInOrder(nicknames)
}

// usersInOrder ニックネーム一覧の順序を保ってユーザーを取得する。
// 退会済みユーザーは除かれる
func (h *UserQueryHandler) usersInOrder(nicknames []string) ([]models.User, error) {
	if len(nicknames) == 0 {
		return []models.User{}, nil
	}
	users, err := h.userRepo.FindAllByNicknames(nicknames)
	if err != nil {
		return nil, err
	}
	byNickname := make(map[string]models.User, len(users))
	for _, user := range users {
		byNickname[user.Nickname] = user
	}
	ordered := make([]models.User, 0, len(nicknames))
	for _, nickname := range nicknames {
		if user, ok := byNickname[nickname]; ok && !user.IsDeleted() {
			ordered = append(ordered, user)
		}
	}
	return ordered, nil
}

// CheckFollowingQuery フォロー中かどうかを確認する
type CheckFollowingQuery struct {
	FromNickname string
	ToNickname   string
}

func (CheckFollowingQuery) QueryName() string { return CheckFollowing }

// HandleCheckFollowing フォロー関係の有無を返す
func (h *UserQueryHandler) HandleCheckFollowing(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(CheckFollowingQuery)
	return h.userRepo.IsFollowing(q.FromNickname, q.ToNickname)
}

// GetFollowingPostsQuery フォロー中のユーザーの投稿をまとめたフィードを
// カーソルページングで取得する
type GetFollowingPostsQuery struct {
	Nickname string
	Cursor   uint
	PageSize int
}

func (GetFollowingPostsQuery) QueryName() string { return GetFollowingPosts }

// HandleGetFollowingPosts フォロー中の書き手の投稿を新しい順で返す。
// 誰もフォローしていなければ空のページを返す
func (h *UserQueryHandler) HandleGetFollowingPosts(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetFollowingPostsQuery)

	user, err := h.userRepo.FindByNickname(q.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() {
		return nil, apperror.NotFound("ユーザー")
	}

	nicknames, err := h.userRepo.FollowingNicknames(q.Nickname)
	if err != nil {
		return nil, err
	}
	if len(nicknames) == 0 {
		return PostPage{Posts: []models.Post{}}, nil
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	posts, err := h.postRepo.ListByWriters(nicknames, q.Cursor, pageSize+1)
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

// GetScrapPostsQuery ユーザーがスクラップした投稿一覧を取得する
type GetScrapPostsQuery struct {
	Nickname string
}

func (GetScrapPostsQuery) QueryName() string { return GetScrapPosts }

// HandleGetScrapPosts スクラップした順で投稿を返す
func (h *UserQueryHandler) HandleGetScrapPosts(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetScrapPostsQuery)
	return h.scrapService.GetScrapPosts(q.Nickname)
}

// GetLikePostsQuery ユーザーがいいねした投稿一覧を取得する
type GetLikePostsQuery struct {
	Nickname string
}

func (GetLikePostsQuery) QueryName() string { return GetLikePosts }

// HandleGetLikePosts いいねした順で投稿を返す。削除済みの投稿は除く
func (h *UserQueryHandler) HandleGetLikePosts(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetLikePostsQuery)

	likes, err := h.likeRepo.ListByNickname(q.Nickname)
	if err != nil {
		return nil, err
	}
	postIDs := make([]uint, 0, len(likes))
	for _, like := range likes {
		postIDs = append(postIDs, like.PostID)
	}
	posts, err := h.postRepo.FindAllByIDs(postIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	ordered := make([]models.Post, 0, len(likes))
	for _, like := range likes {
		if post, ok := byID[like.PostID]; ok {
			ordered = append(ordered, post)
		}
	}
	return ordered, nil
}

// GetWritingPostsQuery ユーザーが書いた投稿一覧を取得する。
// BoardTypeが空なら全掲示板が対象
type GetWritingPostsQuery struct {
	Nickname  string
	BoardType models.BoardType
}

func (GetWritingPostsQuery) QueryName() string { return GetWritingPosts }

// HandleGetWritingPosts 書いた投稿を新しい順で返す
func (h *UserQueryHandler) HandleGetWritingPosts(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetWritingPostsQuery)
	if q.BoardType != "" && !models.IsValidBoardType(q.BoardType) {
		return nil, apperror.Validation("掲示板種別が正しくありません")
	}
	return h.postRepo.ListByWriter(q.Nickname, q.BoardType)
}

// GetWritingCommentsQuery ユーザーが書いたコメント一覧を取得する
type GetWritingCommentsQuery struct {
	Nickname  string
	BoardType models.BoardType
}

func (GetWritingCommentsQuery) QueryName() string { return GetWritingComments }

// HandleGetWritingComments 書いたコメントを新しい順で返す
func (h *UserQueryHandler) HandleGetWritingComments(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(GetWritingCommentsQuery)
	if q.BoardType != "" && !models.IsValidBoardType(q.BoardType) {
		return nil, apperror.Validation("掲示板種別が正しくありません")
	}
	return h.commentRepo.ListByWriter(q.Nickname, q.BoardType)
}
