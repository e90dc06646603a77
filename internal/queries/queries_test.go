package queries

import (
	"context"
	"fmt"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB テスト用のインメモリデータベースを開く
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:queries_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserFollow{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.ScrapPost{},
		&models.PostLikeDailyRanking{},
		&models.S3Image{},
	))
	return db
}

func newUserQueryHandler(t *testing.T, db *gorm.DB) *UserQueryHandler {
	t.Helper()
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	scrapService := services.NewPostScrapService(
		repository.NewScrapPostRepository(db), postRepo, nil)
	return NewUserQueryHandler(
		userRepo,
		postRepo,
		repository.NewCommentRepository(db),
		repository.NewPostLikeRepository(db),
		scrapService,
	)
}

func TestGetPostListPaging(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	handler := NewPostQueryHandler(postRepo, repository.NewPostLikeRepository(db))

	for i := 0; i < 5; i++ {
		require.NoError(t, postRepo.Create(&models.Post{
			BoardType:      models.BoardCommon,
			Title:          fmt.Sprintf("投稿%d", i),
			WriterNickname: "alice",
		}))
	}

	result, err := handler.HandleGetPostList(context.Background(), GetPostListQuery{
		BoardType: models.BoardCommon,
		PageSize:  2,
	})
	require.NoError(t, err)
	page := result.(PostPage)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasNext)
	assert.Equal(t, page.Posts[1].ID, page.NextCursor)
	assert.Greater(t, page.Posts[0].ID, page.Posts[1].ID, "新しい順で返す")

	// 2ページ目
	result, err = handler.HandleGetPostList(context.Background(), GetPostListQuery{
		BoardType: models.BoardCommon,
		Cursor:    page.NextCursor,
		PageSize:  2,
	})
	require.NoError(t, err)
	second := result.(PostPage)
	require.Len(t, second.Posts, 2)
	assert.Less(t, second.Posts[0].ID, page.Posts[1].ID)

	// 最終ページ
	result, err = handler.HandleGetPostList(context.Background(), GetPostListQuery{
		BoardType: models.BoardCommon,
		Cursor:    second.NextCursor,
		PageSize:  2,
	})
	require.NoError(t, err)
	last := result.(PostPage)
	require.Len(t, last.Posts, 1)
	assert.False(t, last.HasNext)
}

func TestGetPostListRejectsUnknownBoard(t *testing.T) {
	db := newTestDB(t)
	handler := NewPostQueryHandler(repository.NewPostRepository(db), repository.NewPostLikeRepository(db))

	_, err := handler.HandleGetPostList(context.Background(), GetPostListQuery{BoardType: "unknown"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrValidation))
}

func TestReadPostIncreasesReadCount(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	handler := NewPostQueryHandler(postRepo, repository.NewPostLikeRepository(db))

	post := &models.Post{BoardType: models.BoardCommon, Title: "タイトル", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(post))

	result, err := handler.HandleReadPost(context.Background(), ReadPostQuery{Identifier: post.Identifier()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*models.Post).ReadCount)

	result, err = handler.HandleReadPost(context.Background(), ReadPostQuery{Identifier: post.Identifier()})
	require.NoError(t, err)
	assert.Equal(t, 2, result.(*models.Post).ReadCount)
}

func TestGetUserInfoMasksPrivateURLs(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{
		Email:             "a@example.com",
		Nickname:          "alice",
		BlogURL:           "https://blog.example.com",
		GithubURL:         "https://github.com/alice",
		IsBlogURLPublic:   false,
		IsGithubURLPublic: true,
	}))

	// 他人から見ると非公開のURLは見えない
	result, err := handler.HandleGetUserInfo(context.Background(), GetUserInfoQuery{
		Nickname:          "alice",
		RequesterNickname: "bob",
	})
	require.NoError(t, err)
	other := result.(*models.User)
	assert.Empty(t, other.BlogURL)
	assert.Equal(t, "https://github.com/alice", other.GithubURL)

	// 本人からはすべて見える
	result, err = handler.HandleGetUserInfo(context.Background(), GetUserInfoQuery{
		Nickname:          "alice",
		RequesterNickname: "alice",
	})
	require.NoError(t, err)
	self := result.(*models.User)
	assert.Equal(t, "https://blog.example.com", self.BlogURL)
}

func TestGetUserInfoIncludesFollowLists(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))
	require.NoError(t, userRepo.Create(&models.User{Email: "b@example.com", Nickname: "bob"}))
	_, err := userRepo.Follow("alice", "bob")
	require.NoError(t, err)

	result, err := handler.HandleGetUserInfo(context.Background(), GetUserInfoQuery{Nickname: "alice"})
	require.NoError(t, err)
	user := result.(*models.User)
	assert.Equal(t, []string{"bob"}, user.FollowingNicknames)
	assert.Empty(t, user.FollowerNicknames)
}

func TestCheckExistence(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))

	result, err := handler.HandleCheckExistence(context.Background(), CheckExistenceQuery{
		Email:    "a@example.com",
		Nickname: "ghost",
	})
	require.NoError(t, err)
	existence := result.(ExistenceResult)
	assert.True(t, existence.EmailUsed)
	assert.False(t, existence.NicknameUsed)
}

func TestGetFollowingPostsReturnsFollowedWritersFeed(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))
	require.NoError(t, userRepo.Create(&models.User{Email: "b@example.com", Nickname: "bob"}))
	require.NoError(t, userRepo.Create(&models.User{Email: "c@example.com", Nickname: "carol"}))
	_, err := userRepo.Follow("alice", "bob")
	require.NoError(t, err)

	require.NoError(t, postRepo.Create(&models.Post{BoardType: models.BoardCommon, Title: "bobの1件目", WriterNickname: "bob"}))
	require.NoError(t, postRepo.Create(&models.Post{BoardType: models.BoardCommon, Title: "carolの投稿", WriterNickname: "carol"}))
	require.NoError(t, postRepo.Create(&models.Post{BoardType: models.BoardQuestion, Title: "bobの2件目", WriterNickname: "bob"}))

	result, err := handler.HandleGetFollowingPosts(context.Background(), GetFollowingPostsQuery{Nickname: "alice"})
	require.NoError(t, err)
	page := result.(PostPage)
	require.Len(t, page.Posts, 2, "フォローしていないcarolの投稿は含まれない")
	assert.Equal(t, "bobの2件目", page.Posts[0].Title)
	assert.Equal(t, "bobの1件目", page.Posts[1].Title)
	assert.False(t, page.HasNext)
}

func TestGetFollowingPostsPaging(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))
	require.NoError(t, userRepo.Create(&models.User{Email: "b@example.com", Nickname: "bob"}))
	_, err := userRepo.Follow("alice", "bob")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, postRepo.Create(&models.Post{
			BoardType:      models.BoardCommon,
			Title:          fmt.Sprintf("投稿%d", i),
			WriterNickname: "bob",
		}))
	}

	result, err := handler.HandleGetFollowingPosts(context.Background(), GetFollowingPostsQuery{
		Nickname: "alice",
		PageSize: 2,
	})
	require.NoError(t, err)
	page := result.(PostPage)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasNext)

	result, err = handler.HandleGetFollowingPosts(context.Background(), GetFollowingPostsQuery{
		Nickname: "alice",
		Cursor:   page.NextCursor,
		PageSize: 2,
	})
	require.NoError(t, err)
	last := result.(PostPage)
	require.Len(t, last.Posts, 1)
	assert.False(t, last.HasNext)
}

func TestGetFollowingPostsEmptyWhenFollowingNobody(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	handler := newUserQueryHandler(t, db)

	require.NoError(t, userRepo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))

	result, err := handler.HandleGetFollowingPosts(context.Background(), GetFollowingPostsQuery{Nickname: "alice"})
	require.NoError(t, err)
	page := result.(PostPage)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasNext)

	// 存在しないユーザーのフィードは404
	_, err = handler.HandleGetFollowingPosts(context.Background(), GetFollowingPostsQuery{Nickname: "ghost"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrNotFound))
}

func TestGetDailyRankingSkipsDeletedPosts(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	rankingRepo := repository.NewRankingRepository(db)
	handler := NewRankingQueryHandler(rankingRepo, postRepo)

	first := &models.Post{BoardType: models.BoardCommon, Title: "1件目", WriterNickname: "alice"}
	second := &models.Post{BoardType: models.BoardCommon, Title: "2件目", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(first))
	require.NoError(t, postRepo.Create(second))

	date := "2026-09-01"
	require.NoError(t, rankingRepo.IncreaseLikeCount(date, first.Identifier()))
	require.NoError(t, rankingRepo.IncreaseLikeCount(date, second.Identifier()))
	require.NoError(t, rankingRepo.IncreaseLikeCount(date, second.Identifier()))

	// いいね数2位の投稿が削除された場合、順位が詰まる
	_, err := postRepo.Remove(first)
	require.NoError(t, err)

	result, err := handler.HandleGetDailyRanking(context.Background(), GetDailyRankingQuery{Date: date})
	require.NoError(t, err)
	ranking := result.([]RankedPost)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, second.ID, ranking[0].Post.ID)
	assert.Equal(t, 2, ranking[0].LikeCount)
}

func TestGetDailyRankingRejectsBadDate(t *testing.T) {
	db := newTestDB(t)
	handler := NewRankingQueryHandler(repository.NewRankingRepository(db), repository.NewPostRepository(db))

	_, err := handler.HandleGetDailyRanking(context.Background(), GetDailyRankingQuery{Date: "09/01/2026"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrValidation))
}
