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

// UserController ユーザーに関するコントローラー
type UserController struct {
	commandBus *cqrs.CommandBus
	queryBus   *cqrs.QueryBus
}

// NewUserController UserControllerを作成
func NewUserController(commandBus *cqrs.CommandBus, queryBus *cqrs.QueryBus) *UserController {
	return &UserController{commandBus: commandBus, queryBus: queryBus}
}

// SignupRequest メール会員登録リクエスト
type SignupRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Nickname     string `json:"nickname" binding:"required,min=2,max=64"`
	Password     string `json:"password" binding:"required,min=6"`
	AvatarURL    string `json:"avatar_url"`
	BlogURL      string `json:"blog_url"`
	GithubURL    string `json:"github_url"`
	PortfolioURL string `json:"portfolio_url"`
}

// Signup メールアドレスで会員登録
func (c *UserController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.SignupLocalCommand{
		Email:        req.Email,
		Nickname:     req.Nickname,
		Password:     req.Password,
		AvatarURL:    req.AvatarURL,
		BlogURL:      req.BlogURL,
		GithubURL:    req.GithubURL,
		PortfolioURL: req.PortfolioURL,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// CheckDuplicate メールアドレス・ニックネームの重複チェック。
// どちらかが使用済みなら409を返す
func (c *UserController) CheckDuplicate(ctx *gin.Context) {
	email := ctx.Query("email")
	nickname := ctx.Query("nickname")
	if email == "" && nickname == "" {
		ctx.Status(http.StatusBadRequest)
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.CheckExistenceQuery{
		Email:    email,
		Nickname: nickname,
	})
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}

	existence := result.(queries.ExistenceResult)
	if existence.EmailUsed || existence.NicknameUsed {
		ctx.Status(http.StatusConflict)
		return
	}
	ctx.Status(http.StatusOK)
}

// VerifyEmailRequest メール本人確認リクエスト
type VerifyEmailRequest struct {
	Email       string `json:"email" binding:"required,email"`
	VerifyToken string `json:"verify_token" binding:"required"`
}

// VerifyEmail メール確認トークンを消費して本人確認を完了
func (c *UserController) VerifyEmail(ctx *gin.Context) {
	var req VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.VerifyEmailSignupCommand{
		Email:       req.Email,
		VerifyToken: req.VerifyToken,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// VerifyGithubRequest GitHub登録確認リクエスト。
// このステップで正式なニックネームを決める
type VerifyGithubRequest struct {
	Email       string `json:"email" binding:"required,email"`
	VerifyToken string `json:"verify_token" binding:"required"`
	Nickname    string `json:"nickname"`
}

// VerifyGithub GitHub確認トークンを消費して登録を完了
func (c *UserController) VerifyGithub(ctx *gin.Context) {
	var req VerifyGithubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.VerifyGithubSignupCommand{
		Email:       req.Email,
		VerifyToken: req.VerifyToken,
		Nickname:    req.Nickname,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// PasswordChangeRequest パスワード変更リクエスト
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword パスワードを変更
func (c *UserController) ChangePassword(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	var req PasswordChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ChangePasswordCommand{
		Nickname:        user.Nickname,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "パスワードが正常に変更されました"})
}

// PasswordResetTokenRequest リセットトークン発行リクエスト
type PasswordResetTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendPasswordResetToken パスワードリセットトークンを発行してメールで送る
func (c *UserController) SendPasswordResetToken(ctx *gin.Context) {
	var req PasswordResetTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.SendPasswordResetTokenCommand{
		Email: req.Email,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "リセットトークンを送信しました"})
}

// PasswordResetRequest パスワード再設定リクエスト
type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	ResetToken  string `json:"reset_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword リセットトークンを消費してパスワードを再設定
func (c *UserController) ResetPassword(ctx *gin.Context) {
	var req PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ResetPasswordCommand{
		Email:       req.Email,
		ResetToken:  req.ResetToken,
		NewPassword: req.NewPassword,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "パスワードを再設定しました"})
}

// GetProfile プロフィールを取得。本人以外には非公開URLは見えない
func (c *UserController) GetProfile(ctx *gin.Context) {
	requesterNickname := ""
	if user := middlewares.CurrentUser(ctx); user != nil {
		requesterNickname = user.Nickname
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetUserInfoQuery{
		Nickname:          ctx.Param("nickname"),
		RequesterNickname: requesterNickname,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ProfileUpdateRequest プロフィール更新リクエスト。指定したフィールドだけ変更される
type ProfileUpdateRequest struct {
	AvatarURL            *string `json:"avatar_url"`
	BlogURL              *string `json:"blog_url"`
	GithubURL            *string `json:"github_url"`
	PortfolioURL         *string `json:"portfolio_url"`
	IsBlogURLPublic      *bool   `json:"is_blog_url_public"`
	IsGithubURLPublic    *bool   `json:"is_github_url_public"`
	IsPortfolioURLPublic *bool   `json:"is_portfolio_url_public"`
}

// requireSelf 対象リソースの所有者であることを確認する
func requireSelf(ctx *gin.Context) *models.User {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return nil
	}
	if user.Nickname != ctx.Param("nickname") {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "自分のアカウントだけを操作できます"})
		return nil
	}
	return user
}

// UpdateProfile プロフィールを更新
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := requireSelf(ctx)
	if user == nil {
		return
	}

	var req ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.ChangeProfileCommand{
		Nickname:             user.Nickname,
		AvatarURL:            req.AvatarURL,
		BlogURL:              req.BlogURL,
		GithubURL:            req.GithubURL,
		PortfolioURL:         req.PortfolioURL,
		IsBlogURLPublic:      req.IsBlogURLPublic,
		IsGithubURLPublic:    req.IsGithubURLPublic,
		IsPortfolioURLPublic: req.IsPortfolioURLPublic,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// DeleteAccount アカウントを退会
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	user := requireSelf(ctx)
	if user == nil {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.DeleteAccountCommand{
		Nickname: user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "退会しました"})
}

// DeleteAvatar プロフィール画像を削除
func (c *UserController) DeleteAvatar(ctx *gin.Context) {
	user := requireSelf(ctx)
	if user == nil {
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.DeleteAvatarCommand{
		Nickname: user.Nickname,
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "プロフィール画像を削除しました"})
}

// Follow ログイン中のユーザーが対象ユーザーをフォローする
func (c *UserController) Follow(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.FollowUserCommand{
		FromNickname: user.Nickname,
		ToNickname:   ctx.Param("nickname"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Unfollow フォローを解除する。フォローしていなくても成功する
func (c *UserController) Unfollow(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	if _, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.UnfollowUserCommand{
		FromNickname: user.Nickname,
		ToNickname:   ctx.Param("nickname"),
	}); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "フォローを解除しました"})
}

// GetFollowings フォロー中のユーザー一覧を取得
func (c *UserController) GetFollowings(ctx *gin.Context) {
	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetFollowingUsersQuery{
		Nickname: ctx.Param("nickname"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetFollowers フォロワー一覧を取得
func (c *UserController) GetFollowers(ctx *gin.Context) {
	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetFollowerUsersQuery{
		Nickname: ctx.Param("nickname"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CheckFollowing ログイン中のユーザーが対象をフォロー中かどうか
func (c *UserController) CheckFollowing(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.CheckFollowingQuery{
		FromNickname: user.Nickname,
		ToNickname:   ctx.Param("nickname"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"following": result})
}

// GetFollowingPosts フォロー中のユーザーの投稿フィードを取得
func (c *UserController) GetFollowingPosts(ctx *gin.Context) {
	cursor, _ := strconv.ParseUint(ctx.Query("cursor"), 10, 64)
	pageSize, _ := strconv.Atoi(ctx.Query("page_size"))

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetFollowingPostsQuery{
		Nickname: ctx.Param("nickname"),
		Cursor:   uint(cursor),
		PageSize: pageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetScraps スクラップした投稿一覧を取得。本人だけが見られる
func (c *UserController) GetScraps(ctx *gin.Context) {
	user := requireSelf(ctx)
	if user == nil {
		return
	}

	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetScrapPostsQuery{
		Nickname: user.Nickname,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetLikes いいねした投稿一覧を取得
func (c *UserController) GetLikes(ctx *gin.Context) {
	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetLikePostsQuery{
		Nickname: ctx.Param("nickname"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetPosts 書いた投稿一覧を取得
func (c *UserController) GetPosts(ctx *gin.Context) {
	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetWritingPostsQuery{
		Nickname:  ctx.Param("nickname"),
		BoardType: models.BoardType(ctx.Query("board")),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetComments 書いたコメント一覧を取得
func (c *UserController) GetComments(ctx *gin.Context) {
	result, err := c.queryBus.Execute(ctx.Request.Context(), queries.GetWritingCommentsQuery{
		Nickname:  ctx.Param("nickname"),
		BoardType: models.BoardType(ctx.Query("board")),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
