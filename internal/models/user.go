package models

import (
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/google/uuid"
)

// GithubRepositoryInfo 連携したGitHubリポジトリの情報
type GithubRepositoryInfo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"htmlUrl"`
	Description string `json:"description,omitempty"`
	StarCount   int    `json:"starCount"`
}

// GithubUserInfo GitHub連携情報
type GithubUserInfo struct {
	GithubID     string                 `json:"githubId"`
	Email        string                 `json:"email"`
	Name         string                 `json:"name"`
	AvatarURL    string                 `json:"avatarUrl"`
	Repositories []GithubRepositoryInfo `json:"repositories"`
}

// User ユーザーモデル。
// パスワードかGitHub識別子のどちらかで認証方式が決まるが、
// アカウント連携後は両方を持つことがある
type User struct {
	ID                      uint            `json:"-" gorm:"primaryKey"`
	Email                   string          `json:"email" gorm:"uniqueIndex;not null"`
	Nickname                string          `json:"nickname" gorm:"uniqueIndex;not null;size:64"`
	Password                string          `json:"-"`
	AvatarURL               string          `json:"avatar_url"`
	BlogURL                 string          `json:"blog_url"`
	GithubURL               string          `json:"github_url"`
	PortfolioURL            string          `json:"portfolio_url"`
	IsBlogURLPublic         bool            `json:"is_blog_url_public" gorm:"default:true"`
	IsGithubURLPublic       bool            `json:"is_github_url_public" gorm:"default:true"`
	IsPortfolioURLPublic    bool            `json:"is_portfolio_url_public" gorm:"default:true"`
	GithubUserIdentifier    *int64          `json:"-" gorm:"uniqueIndex"`
	GithubUserInfo          *GithubUserInfo `json:"-" gorm:"serializer:json"`
	EmailSignupVerifyToken  string          `json:"-"`
	EmailSignupVerified     bool            `json:"email_signup_verified" gorm:"default:false"`
	GithubSignupVerifyToken string          `json:"-"`
	GithubSignupVerified    bool            `json:"github_signup_verified" gorm:"default:false"`
	PasswordResetToken      string          `json:"-"`
	Role                    string          `json:"role" gorm:"default:user"`
	AccountSuspendedSince   *time.Time      `json:"-"`
	AccountDeletedSince     *time.Time      `json:"-"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`

	// リレーション（読み取り時にリポジトリが明示的にjoinして詰める）
	FollowingNicknames []string `json:"following_nicknames,omitempty" gorm:"-"`
	FollowerNicknames  []string `json:"follower_nicknames,omitempty" gorm:"-"`
}

// UserFollow フォロー関係の中間テーブル。(from, to)のペアは重複不可
type UserFollow struct {
	FromNickname string    `json:"from_nickname" gorm:"primaryKey;size:64"`
	ToNickname   string    `json:"to_nickname" gorm:"primaryKey;size:64"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsGithubUser GitHub認証ユーザーかどうか
func (u *User) IsGithubUser() bool {
	return u.GithubUserIdentifier != nil
}

// IsEmailUser メール認証ユーザーかどうか
func (u *User) IsEmailUser() bool {
	return u.Password != ""
}

// IsVerified 本人確認が完了しているかどうか
func (u *User) IsVerified() bool {
	if u.IsEmailUser() && u.EmailSignupVerified {
		return true
	}
	if u.IsGithubUser() && u.GithubSignupVerified {
		return true
	}
	return false
}

// IsDeleted 退会済みかどうか
func (u *User) IsDeleted() bool {
	return u.AccountDeletedSince != nil
}

// SetNewEmailSignupVerifyToken メール確認トークンを発行する
func (u *User) SetNewEmailSignupVerifyToken() {
	u.EmailSignupVerifyToken = uuid.NewString()
	u.EmailSignupVerified = false
}

// SetNewGithubSignupVerifyToken GitHub確認トークンを発行する
func (u *User) SetNewGithubSignupVerifyToken() {
	u.GithubSignupVerifyToken = uuid.NewString()
	u.GithubSignupVerified = false
}

// VerifyEmailSignup メール確認トークンを消費する。
// トークンは完全一致のみ許可し、成功後はクリアされるため再利用できない
func (u *User) VerifyEmailSignup(token string) error {
	if u.EmailSignupVerifyToken == "" || u.EmailSignupVerifyToken != token {
		return apperror.Validation("確認トークンが正しくありません")
	}
	u.EmailSignupVerified = true
	u.EmailSignupVerifyToken = ""
	return nil
}

// VerifyGithubSignup GitHub確認トークンを消費する
func (u *User) VerifyGithubSignup(token string) error {
	if u.GithubSignupVerifyToken == "" || u.GithubSignupVerifyToken != token {
		return apperror.Validation("確認トークンが正しくありません")
	}
	u.GithubSignupVerified = true
	u.GithubSignupVerifyToken = ""
	return nil
}

// LinkAccountWithGithub 既存のメールアカウントにGitHub識別子を連携する
func (u *User) LinkAccountWithGithub(identifier int64, info *GithubUserInfo) {
	u.GithubUserIdentifier = &identifier
	u.GithubUserInfo = info
	if u.AvatarURL == "" && info != nil {
		u.AvatarURL = info.AvatarURL
	}
	u.SetNewGithubSignupVerifyToken()
}
