package services

import (
	"time"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 認証に関するサービスインターフェース
type AuthService interface {
	Login(email, password string) (*models.User, string, error)
	IssueToken(nickname string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserFromToken(tokenString string) (*models.User, error)
	HashPassword(password string) (string, error)
	VerifyPassword(hashed, password string) bool
}

// authService AuthServiceの実装
type authService struct {
	userRepo repository.UserRepository
	config   *config.Config
}

// NewAuthService AuthServiceを作成
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		config:   cfg,
	}
}

// Claims JWTのペイロード
type Claims struct {
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// Login メールアドレスとパスワードでログインし、トークンを発行する
func (s *authService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.IsDeleted() {
		return nil, "", apperror.Unauthorized("メールアドレスまたはパスワードが正しくありません")
	}
	if !s.VerifyPassword(user.Password, password) {
		return nil, "", apperror.Unauthorized("メールアドレスまたはパスワードが正しくありません")
	}

	token, err := s.IssueToken(user.Nickname)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken JWTトークンを生成
func (s *authService) IssueToken(nickname string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Auth.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Auth.JWTSecret))
}

// ValidateToken トークンを検証
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, apperror.Unauthorized("無効なトークンです")
	}
	if !token.Valid {
		return nil, apperror.Unauthorized("無効なトークンです")
	}
	return claims, nil
}

// GetUserFromToken トークンからユーザーを取得
func (s *authService) GetUserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByNickname(claims.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() {
		return nil, apperror.Unauthorized("無効なトークンです")
	}
	return user, nil
}

// HashPassword パスワードをハッシュ化
func (s *authService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword パスワードを検証
func (s *authService) VerifyPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
