// Package events ドメインイベントの定義。
// イベントは完了した状態遷移を表す不変の事実（誰が・何を・いつ）
package events

import (
	"time"

	"github.com/KodingCommunity/koding_backend/internal/models"
)

// イベント名。saga・ハンドラーの購読キーとして使う
const (
	UserFollowed   = "UserFollowed"
	UserUnfollowed = "UserUnfollowed"
	AccountDeleted = "AccountDeleted"
	PostLiked      = "PostLiked"
	PostUnliked    = "PostUnliked"
	PostScrapped   = "PostScrapped"
	PostUnscrapped = "PostUnscrapped"
	PostDeleted    = "PostDeleted"
	CommentAdded   = "CommentAdded"
	CommentDeleted = "CommentDeleted"
)

// UserFollowedEvent フォロー関係が新規に成立した
type UserFollowedEvent struct {
	FromNickname string
	ToNickname   string
	FollowedAt   time.Time
}

func (UserFollowedEvent) EventName() string { return UserFollowed }

// UserUnfollowedEvent フォロー関係が解消された
type UserUnfollowedEvent struct {
	FromNickname string
	ToNickname   string
	UnfollowedAt time.Time
}

func (UserUnfollowedEvent) EventName() string { return UserUnfollowed }

// AccountDeletedEvent アカウントが退会した
type AccountDeletedEvent struct {
	Nickname  string
	DeletedAt time.Time
}

func (AccountDeletedEvent) EventName() string { return AccountDeleted }

// PostLikedEvent 投稿にいいねが付いた
type PostLikedEvent struct {
	PostIdentifier models.PostIdentifier
	Nickname       string
	LikedAt        time.Time
}

func (PostLikedEvent) EventName() string { return PostLiked }

// PostUnlikedEvent 投稿のいいねが取り消された
type PostUnlikedEvent struct {
	PostIdentifier models.PostIdentifier
	Nickname       string
	LikedAt        time.Time // 元のいいね日時
}

func (PostUnlikedEvent) EventName() string { return PostUnliked }

// PostScrappedEvent 投稿がスクラップされた
type PostScrappedEvent struct {
	PostIdentifier models.PostIdentifier
	Nickname       string
	ScrappedAt     time.Time
}

func (PostScrappedEvent) EventName() string { return PostScrapped }

// PostUnscrappedEvent 投稿のスクラップが解除された
type PostUnscrappedEvent struct {
	PostIdentifier models.PostIdentifier
	Nickname       string
	ScrappedAt     time.Time // 元のスクラップ日時
}

func (PostUnscrappedEvent) EventName() string { return PostUnscrapped }

// PostDeletedEvent 投稿が削除された
type PostDeletedEvent struct {
	PostIdentifier models.PostIdentifier
	WriterNickname string
	DeletedAt      time.Time
}

func (PostDeletedEvent) EventName() string { return PostDeleted }

// CommentAddedEvent コメントが追加された
type CommentAddedEvent struct {
	PostIdentifier models.PostIdentifier
	CommentID      string
	WriterNickname string
	CreatedAt      time.Time
}

func (CommentAddedEvent) EventName() string { return CommentAdded }

// CommentDeletedEvent コメントが削除された
type CommentDeletedEvent struct {
	PostIdentifier models.PostIdentifier
	CommentID      string
	DeletedAt      time.Time
}

func (CommentDeletedEvent) EventName() string { return CommentDeleted }
