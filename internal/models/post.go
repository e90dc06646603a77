package models

import (
	"time"
)

// BoardType 掲示板の種別
type BoardType string

const (
	BoardCommon     BoardType = "common"
	BoardQuestion   BoardType = "question"
	BoardCareer     BoardType = "career"
	BoardRecruit    BoardType = "recruit"
	BoardStudyGroup BoardType = "study-group"
	BoardColumn     BoardType = "column"
)

// IsValidBoardType 掲示板種別が定義済みかどうか
func IsValidBoardType(boardType BoardType) bool {
	switch boardType {
	case BoardCommon, BoardQuestion, BoardCareer, BoardRecruit, BoardStudyGroup, BoardColumn:
		return true
	}
	return false
}

// PostIdentifier 掲示板種別と投稿IDの組で投稿を特定する
type PostIdentifier struct {
	BoardType BoardType `json:"board_type"`
	PostID    uint      `json:"post_id"`
}

// Post 投稿モデル。カウンターはlike/scrapハンドラーが
// (user, post)ペアごとにat-most-onceで増減する
type Post struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	BoardType       BoardType `json:"board_type" gorm:"index;not null;size:32"`
	Title           string    `json:"title" gorm:"not null"`
	MarkdownContent string    `json:"markdown_content" gorm:"type:text"`
	HTMLContent     string    `json:"html_content" gorm:"type:text"`
	WriterNickname  string    `json:"writer_nickname" gorm:"index;not null;size:64"`
	Tags            []string  `json:"tags" gorm:"serializer:json"`
	ImageURLs       []string  `json:"image_urls" gorm:"serializer:json"`
	LikeCount       int       `json:"like_count" gorm:"default:0"`
	ScrapCount      int       `json:"scrap_count" gorm:"default:0"`
	CommentCount    int       `json:"comment_count" gorm:"default:0"`
	ReadCount       int       `json:"read_count" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// リレーション（読み取り時に詰める）
	Writer *User `json:"writer,omitempty" gorm:"-"`
}

// Identifier 投稿の識別子を返す
func (p *Post) Identifier() PostIdentifier {
	return PostIdentifier{BoardType: p.BoardType, PostID: p.ID}
}

// IsOwnedBy 投稿の所有者かどうか
func (p *Post) IsOwnedBy(nickname string) bool {
	return p.WriterNickname == nickname
}
