package repository

import (
	"fmt"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB テスト用のインメモリデータベースを開く
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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

func TestPersistIfAbsentSignalsInsertExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	base := NewBaseRepository[models.PostLike](db, "nickname", "post_id")

	like := &models.PostLike{Nickname: "bob", PostID: 1, BoardType: models.BoardCommon}
	inserted, err := base.PersistIfAbsent(like)
	require.NoError(t, err)
	assert.True(t, inserted, "初回は挿入シグナルが立つ")

	again := &models.PostLike{Nickname: "bob", PostID: 1, BoardType: models.BoardCommon}
	inserted, err = base.PersistIfAbsent(again)
	require.NoError(t, err)
	assert.False(t, inserted, "2回目は挿入が起きない")

	count, err := base.Count(Eq("nickname", "bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFindOneReturnsNilWhenMissing(t *testing.T) {
	db := newTestDB(t)
	base := NewBaseRepository[models.User](db, "email")

	user, err := base.FindOne(Eq("nickname", "ghost"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateMissingRowIsNoOp(t *testing.T) {
	db := newTestDB(t)
	base := NewBaseRepository[models.User](db, "email")

	missing := &models.User{ID: 999, Email: "ghost@example.com", Nickname: "ghost"}
	err := base.Update(missing)
	assert.NoError(t, err, "更新対象がなくてもエラーにしない")

	count, err := base.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRemoveReportsWhetherDeleted(t *testing.T) {
	db := newTestDB(t)
	base := NewBaseRepository[models.PostLike](db, "nickname", "post_id")

	like := &models.PostLike{Nickname: "bob", PostID: 1, BoardType: models.BoardCommon}
	_, err := base.PersistIfAbsent(like)
	require.NoError(t, err)

	deleted, err := base.Remove(like)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = base.Remove(like)
	require.NoError(t, err)
	assert.False(t, deleted, "既に消えた行の削除はfalse")
}

func TestUserRepositoryFollow(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{Email: "a@example.com", Nickname: "alice"}))
	require.NoError(t, repo.Create(&models.User{Email: "b@example.com", Nickname: "bob"}))

	inserted, err := repo.Follow("alice", "bob")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Follow("alice", "bob")
	require.NoError(t, err)
	assert.False(t, inserted, "重複フォローでは新規成立しない")

	following, err := repo.FollowingNicknames("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, following)

	followers, err := repo.FollowerNicknames("bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)

	removed, err := repo.Unfollow("alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unfollow("alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostRepositoryCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{BoardType: models.BoardCommon, Title: "タイトル", WriterNickname: "alice"}
	require.NoError(t, repo.Create(post))
	identifier := post.Identifier()

	require.NoError(t, repo.IncreaseLikeCount(identifier))
	require.NoError(t, repo.IncreaseLikeCount(identifier))
	require.NoError(t, repo.DecreaseLikeCount(identifier))

	found, err := repo.FindByIdentifier(identifier)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 1, found.LikeCount)
}

func TestRankingRepositoryUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewRankingRepository(db)
	identifier := models.PostIdentifier{BoardType: models.BoardCommon, PostID: 7}

	require.NoError(t, repo.IncreaseLikeCount("2026-09-01", identifier))
	require.NoError(t, repo.IncreaseLikeCount("2026-09-01", identifier))

	top, err := repo.TopOfDate("2026-09-01", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].LikeCount)

	require.NoError(t, repo.DecreaseLikeCount("2026-09-01", identifier))
	top, err = repo.TopOfDate("2026-09-01", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].LikeCount)

	// 行がない日の減算は何もしない
	assert.NoError(t, repo.DecreaseLikeCount("2026-01-01", identifier))
}
