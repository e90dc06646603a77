package models

import (
	"time"
)

// S3ImageKind 画像の用途
type S3ImageKind string

const (
	S3ImagePost   S3ImageKind = "post"
	S3ImageAvatar S3ImageKind = "avatar"
)

// S3Image アップロード済み画像の記録。投稿の編集・削除時に
// 参照されなくなった画像をS3から回収するために使う
type S3Image struct {
	ID            uint        `json:"-" gorm:"primaryKey"`
	FileKey       string      `json:"file_key" gorm:"uniqueIndex;not null"`
	FileURL       string      `json:"file_url" gorm:"not null"`
	OwnerNickname string      `json:"owner_nickname" gorm:"index;not null;size:64"`
	Kind          S3ImageKind `json:"kind" gorm:"not null;size:16"`
	PostID        *uint       `json:"post_id" gorm:"index"`
	CreatedAt     time.Time   `json:"created_at"`
}
