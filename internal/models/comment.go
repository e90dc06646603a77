package models

import (
	"time"
)

// Comment コメントモデル。ちょうど1つの投稿に属し、
// 親投稿が削除されたときに一緒に削除される
type Comment struct {
	ID                 uint      `json:"-" gorm:"primaryKey"`
	CommentID          string    `json:"comment_id" gorm:"uniqueIndex;not null;size:32"`
	BoardType          BoardType `json:"board_type" gorm:"not null;size:32"`
	PostID             uint      `json:"post_id" gorm:"index;not null"`
	WriterNickname     string    `json:"writer_nickname" gorm:"index;not null;size:64"`
	Content            string    `json:"content" gorm:"type:text;not null"`
	MentionedNicknames []string  `json:"mentioned_nicknames" gorm:"serializer:json"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PostIdentifier 親投稿の識別子を返す
func (c *Comment) PostIdentifier() PostIdentifier {
	return PostIdentifier{BoardType: c.BoardType, PostID: c.PostID}
}

// IsOwnedBy コメントの所有者かどうか
func (c *Comment) IsOwnedBy(nickname string) bool {
	return c.WriterNickname == nickname
}
