package controllers

import (
	"net/http"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/middlewares"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

// oauthStateCookie CSRF対策のstateを保存するクッキー名
const oauthStateCookie = "oauth_state"

// AuthController 認証に関するコントローラー
type AuthController struct {
	authService   services.AuthService
	githubService services.GithubService
	commandBus    *cqrs.CommandBus
	cfg           *config.Config
}

// NewAuthController AuthControllerを作成
func NewAuthController(
	authService services.AuthService,
	githubService services.GithubService,
	commandBus *cqrs.CommandBus,
	cfg *config.Config,
) *AuthController {
	return &AuthController{
		authService:   authService,
		githubService: githubService,
		commandBus:    commandBus,
		cfg:           cfg,
	}
}

// LoginRequest ログインリクエスト
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 認証レスポンス
type AuthResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// setAuthCookie 認証トークンをHttpOnlyクッキーに設定する
func (c *AuthController) setAuthCookie(ctx *gin.Context, token string) {
	ctx.SetCookie(c.cfg.Auth.CookieName, token, int(c.cfg.Auth.TokenExpiry.Seconds()), "/", "", false, true)
}

// Login ログイン
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := c.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	c.setAuthCookie(ctx, token)
	ctx.JSON(http.StatusOK, AuthResponse{
		User:  user,
		Token: token,
	})
}

// Logout ログアウト。クッキーを無効化する
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(c.cfg.Auth.CookieName, "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
}

// GetMe 現在のユーザー情報を取得
func (c *AuthController) GetMe(ctx *gin.Context) {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// GithubLogin GitHub OAuthの認可画面にリダイレクトする
func (c *AuthController) GithubLogin(ctx *gin.Context) {
	state := xid.New().String()
	ctx.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
	ctx.Redirect(http.StatusTemporaryRedirect, c.githubService.AuthCodeURL(state))
}

// GithubCallback GitHub OAuthのコールバック。
// stateを検証し、コード交換で得たプロフィールで登録またはログインする
func (c *AuthController) GithubCallback(ctx *gin.Context) {
	state, err := ctx.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != ctx.Query("state") {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "OAuthのstateが一致しません"})
		return
	}
	ctx.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "認可コードがありません"})
		return
	}

	profile, err := c.githubService.ExchangeUser(ctx.Request.Context(), code)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "GitHub認証に失敗しました"})
		return
	}

	result, err := c.commandBus.Dispatch(ctx.Request.Context(), commands.SignupGithubCommand{
		GithubID:             profile.Login,
		GithubUserIdentifier: profile.ID,
		ReposURL:             profile.ReposURL,
		AvatarURL:            profile.AvatarURL,
		Email:                profile.Email,
		Name:                 profile.Name,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	user := result.(*models.User)

	token, err := c.authService.IssueToken(user.Nickname)
	if err != nil {
		respondError(ctx, err)
		return
	}

	c.setAuthCookie(ctx, token)
	ctx.JSON(http.StatusOK, AuthResponse{
		User:  user,
		Token: token,
	})
}
