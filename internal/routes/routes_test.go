package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRouter APIルーター一式をインメモリデータベースで立ち上げる
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	return SetupRouter(cfg, db), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// signupVerifiedUser 会員登録から本人確認・ログインまで済ませて認証クッキーを返す
func signupVerifiedUser(t *testing.T, router *gin.Engine, db *gorm.DB, email, nickname string) *http.Cookie {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"email":    email,
		"nickname": nickname,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var user models.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	recorder = doJSON(t, router, http.MethodPost, "/api/users/verify-email", gin.H{
		"email":        email,
		"verify_token": user.EmailSignupVerifyToken,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "access_token" {
			return cookie
		}
	}
	t.Fatal("認証クッキーが設定されていません")
	return nil
}

func TestSignupAndLoginFlow(t *testing.T) {
	router, db := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"email":    "alice@example.com",
		"nickname": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	// 重複チェック
	recorder = doJSON(t, router, http.MethodHead, "/api/users?email=alice@example.com", nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	recorder = doJSON(t, router, http.MethodHead, "/api/users?nickname=ghost", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder = doJSON(t, router, http.MethodHead, "/api/users", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// 登録メールのトークンで本人確認を済ませてからログインする
	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	recorder = doJSON(t, router, http.MethodPost, "/api/users/verify-email", gin.H{
		"email":        "alice@example.com",
		"verify_token": user.EmailSignupVerifyToken,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &auth))
	assert.NotEmpty(t, auth.Token)

	// パスワード間違いは401
	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetMeRequiresAuth(t *testing.T) {
	router, db := newTestRouter(t)
	cookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")

	recorder := doJSON(t, router, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Nickname)

	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestPostLifecycle(t *testing.T) {
	router, db := newTestRouter(t)
	cookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")

	// 未認証の投稿は拒否される
	recorder := doJSON(t, router, http.MethodPost, "/api/boards/common/posts", gin.H{
		"title":            "はじめての投稿",
		"markdown_content": "# こんにちは",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/boards/common/posts", gin.H{
		"title":            "はじめての投稿",
		"markdown_content": "# こんにちは",
		"tags":             []string{"go", "web"},
	}, cookie)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &post))
	require.NotZero(t, post.ID)
	assert.Equal(t, "alice", post.WriterNickname)

	// 一覧と閲覧
	recorder = doJSON(t, router, http.MethodGet, "/api/boards/common/posts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page struct {
		Posts   []models.Post `json:"posts"`
		HasNext bool          `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	require.Len(t, page.Posts, 1)
	assert.False(t, page.HasNext)

	postPath := fmt.Sprintf("/api/boards/common/posts/%d", post.ID)
	recorder = doJSON(t, router, http.MethodGet, postPath, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var read models.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &read))
	assert.Equal(t, 1, read.ReadCount)

	// 存在しない掲示板は400
	recorder = doJSON(t, router, http.MethodGet, "/api/boards/unknown/posts", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLikeFlowFeedsDailyRanking(t *testing.T) {
	router, db := newTestRouter(t)
	cookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")

	recorder := doJSON(t, router, http.MethodPost, "/api/boards/common/posts", gin.H{
		"title":            "いいね対象",
		"markdown_content": "本文",
	}, cookie)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &post))

	likePath := fmt.Sprintf("/api/boards/common/posts/%d/like", post.ID)
	recorder = doJSON(t, router, http.MethodPost, likePath, nil, cookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	// 2回いいねしてもカウントは増えない
	recorder = doJSON(t, router, http.MethodPost, likePath, nil, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/boards/common/posts/%d/liked", post.ID), nil, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	var liked struct {
		Liked bool `json:"liked"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &liked))
	assert.True(t, liked.Liked)

	// いいねイベントが日次ランキングに集計される
	recorder = doJSON(t, router, http.MethodGet, "/api/ranking/daily", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var ranking []struct {
		Rank      int         `json:"rank"`
		LikeCount int         `json:"like_count"`
		Post      models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ranking))
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 1, ranking[0].LikeCount)
	assert.Equal(t, post.ID, ranking[0].Post.ID)
}

func TestCommentFlowAdjustsCommentCount(t *testing.T) {
	router, db := newTestRouter(t)
	cookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")

	recorder := doJSON(t, router, http.MethodPost, "/api/boards/question/posts", gin.H{
		"title":            "質問です",
		"markdown_content": "本文",
	}, cookie)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &post))

	commentsPath := fmt.Sprintf("/api/boards/question/posts/%d/comments", post.ID)
	recorder = doJSON(t, router, http.MethodPost, commentsPath, gin.H{
		"content": "回答です",
	}, cookie)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var comment models.Comment
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &comment))
	require.NotEmpty(t, comment.CommentID)

	// コメント追加イベントでコメント数が増える
	recorder = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/boards/question/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var read models.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &read))
	assert.Equal(t, 1, read.CommentCount)

	recorder = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.CommentID, nil, cookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/boards/question/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &read))
	assert.Equal(t, 0, read.CommentCount)
}

func TestFollowingPostsFeed(t *testing.T) {
	router, db := newTestRouter(t)
	aliceCookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")
	bobCookie := signupVerifiedUser(t, router, db, "bob@example.com", "bob")

	recorder := doJSON(t, router, http.MethodPost, "/api/boards/common/posts", gin.H{
		"title":            "bobの投稿",
		"markdown_content": "本文",
	}, bobCookie)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	// フォロー前のフィードは空
	recorder = doJSON(t, router, http.MethodGet, "/api/users/alice/followings/posts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	assert.Empty(t, page.Posts)

	recorder = doJSON(t, router, http.MethodPost, "/api/users/bob/follow", nil, aliceCookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodGet, "/api/users/alice/followings/posts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "bobの投稿", page.Posts[0].Title)
	assert.Equal(t, "bob", page.Posts[0].WriterNickname)
}

func TestAccountGuards(t *testing.T) {
	router, db := newTestRouter(t)
	aliceCookie := signupVerifiedUser(t, router, db, "alice@example.com", "alice")
	signupVerifiedUser(t, router, db, "bob@example.com", "bob")

	// 他人のアカウントは退会させられない
	recorder := doJSON(t, router, http.MethodDelete, "/api/users/bob", nil, aliceCookie)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// 未認証は401
	recorder = doJSON(t, router, http.MethodDelete, "/api/users/alice", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// フォローとフォロー確認
	recorder = doJSON(t, router, http.MethodPost, "/api/users/bob/follow", nil, aliceCookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	recorder = doJSON(t, router, http.MethodGet, "/api/users/bob/following", nil, aliceCookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	var following struct {
		Following bool `json:"following"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &following))
	assert.True(t, following.Following)

	// 退会すると同じトークンでは認証できなくなる
	recorder = doJSON(t, router, http.MethodDelete, "/api/users/alice", nil, aliceCookie)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, aliceCookie)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
