package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AWS      AWSConfig
	Mail     MailConfig
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	APIBaseURL   string // OAuthコールバックURLの組み立てに使う
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

// AuthConfig 認証設定
type AuthConfig struct {
	JWTSecret          string
	TokenExpiry        time.Duration
	CookieName         string
	GithubClientID     string
	GithubClientSecret string
}

// AWSConfig AWS設定
type AWSConfig struct {
	Region                 string
	S3Bucket               string
	PostImageKeyPrefix     string
	ProfileAvatarKeyPrefix string
}

// MailConfig メール送信設定
type MailConfig struct {
	FromAddress string
	VerifyURL   string // 確認リンクのベースURL
}

// Load 環境変数から設定をロード
func Load() (*Config, error) {
	// .env ファイルをロード (存在すれば)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 10)) * time.Second,
			APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Username: getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "koding"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
			TokenExpiry:        time.Duration(getEnvAsInt("TOKEN_EXPIRY", 24)) * time.Hour,
			CookieName:         getEnv("AUTH_COOKIE_NAME", "access_token"),
			GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		},
		AWS: AWSConfig{
			Region:                 getEnv("AWS_REGION", "ap-northeast-2"),
			S3Bucket:               getEnv("AWS_S3_BUCKET", "koding-bucket"),
			PostImageKeyPrefix:     getEnv("AWS_S3_POST_IMAGE_PREFIX", "post-images"),
			ProfileAvatarKeyPrefix: getEnv("AWS_S3_AVATAR_PREFIX", "profile-avatars"),
		},
		Mail: MailConfig{
			FromAddress: getEnv("MAIL_FROM", "no-reply@koding.dev"),
			VerifyURL:   getEnv("MAIL_VERIFY_URL", "http://localhost:3000/verify"),
		},
	}

	return config, nil
}

// getEnv 環境変数を取得、存在しない場合はデフォルト値を返す
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
