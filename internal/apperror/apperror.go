package apperror

import (
	"errors"
	"fmt"
)

// エラー種別。コントローラー層でHTTPステータスに変換される
var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// AppError アプリケーションエラー
type AppError struct {
	Kind    error  // エラー種別（上のセンチネル値のいずれか）
	Message string // クライアントに返すメッセージ
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Validation 入力値エラーを作成
func Validation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Message: message}
}

// Unauthorized 認証エラーを作成
func Unauthorized(message string) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

// Forbidden 権限エラーを作成
func Forbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Message: message}
}

// NotFound 対象が存在しないエラーを作成
func NotFound(resource string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf("%sが見つかりません", resource)}
}

// Conflict 重複エラーを作成
func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

// IsKind エラーが指定の種別かどうかを判定
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
