// Package controllers HTTPリクエストをコマンド・クエリに変換して
// バスに配送するコントローラー群
package controllers

import (
	"net/http"

	"github.com/KodingCommunity/koding_backend/internal/apperror"

	"github.com/gin-gonic/gin"
)

// respondError アプリケーションエラーをHTTPステータスに変換して返す
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "サーバーエラーが発生しました"

	switch {
	case apperror.IsKind(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case apperror.IsKind(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case apperror.IsKind(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case apperror.IsKind(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case apperror.IsKind(err, apperror.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	}

	ctx.JSON(status, gin.H{"error": message})
}
