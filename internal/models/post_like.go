package models

import (
	"time"
)

// PostLike いいねの中間テーブル。(nickname, post_id)のペアは重複不可。
// 行の存在はPostのlike_countがちょうど1回加算されたことを意味する
type PostLike struct {
	Nickname  string    `json:"nickname" gorm:"primaryKey;size:64"`
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	BoardType BoardType `json:"board_type" gorm:"not null;size:32"`
	CreatedAt time.Time `json:"created_at"`
}

// ScrapPost スクラップの中間テーブル。(nickname, post_id)のペアは重複不可
type ScrapPost struct {
	Nickname  string    `json:"nickname" gorm:"primaryKey;size:64"`
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	BoardType BoardType `json:"board_type" gorm:"not null;size:32"`
	CreatedAt time.Time `json:"created_at"`
}

// PostLikeDailyRanking 日次いいね集計。(aggregation_date, post_id)のペアは重複不可
type PostLikeDailyRanking struct {
	AggregationDate string    `json:"aggregation_date" gorm:"primaryKey;size:10"` // YYYY-MM-DD
	PostID          uint      `json:"post_id" gorm:"primaryKey"`
	BoardType       BoardType `json:"board_type" gorm:"not null;size:32"`
	LikeCount       int       `json:"like_count" gorm:"default:0"`
	UpdatedAt       time.Time `json:"updated_at"`
}
