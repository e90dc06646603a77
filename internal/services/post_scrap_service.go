package services

import (
	"context"
	"time"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
)

const (
	scrapRetryAttempts = 3
	scrapRetryBackoff  = 100 * time.Millisecond
)

// PostScrapService スクラップの追加・解除を行うサービスインターフェース。
// カウンターの増減はupsertの挿入シグナルに基づいてちょうど1回だけ行う
type PostScrapService interface {
	ScrapPost(ctx context.Context, identifier models.PostIdentifier, nickname string) error
	UnscrapPost(ctx context.Context, identifier models.PostIdentifier, nickname string) error
	IsUserScrapPost(identifier models.PostIdentifier, nickname string) (bool, error)
	GetScrapPosts(nickname string) ([]models.Post, error)
}

// postScrapService PostScrapServiceの実装
type postScrapService struct {
	scrapRepo repository.ScrapPostRepository
	postRepo  repository.PostRepository
	publisher cqrs.EventPublisher
}

// NewPostScrapService PostScrapServiceを作成
func NewPostScrapService(
	scrapRepo repository.ScrapPostRepository,
	postRepo repository.PostRepository,
	publisher cqrs.EventPublisher,
) PostScrapService {
	return &postScrapService{
		scrapRepo: scrapRepo,
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// ScrapPost スクラップを追加する。一時的な書き込み競合を吸収するため
// 固定間隔でリトライする（3回、100ms）。挿入が実際に起きた場合のみ
// カウンターを増やしイベントを発行する
func (s *postScrapService) ScrapPost(ctx context.Context, identifier models.PostIdentifier, nickname string) error {
	var lastErr error
	for attempt := 0; attempt < scrapRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(scrapRetryBackoff)
		}
		inserted, err := s.scrapRepo.Insert(&models.ScrapPost{
			Nickname:  nickname,
			PostID:    identifier.PostID,
			BoardType: identifier.BoardType,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if inserted {
			if err := s.postRepo.IncreaseScrapCount(identifier); err != nil {
				return err
			}
			s.publisher.Publish(ctx, events.PostScrappedEvent{
				PostIdentifier: identifier,
				Nickname:       nickname,
				ScrappedAt:     time.Now(),
			})
		}
		return nil
	}
	return lastErr
}

// UnscrapPost スクラップを解除する。スクラップしていなければ何もしない
func (s *postScrapService) UnscrapPost(ctx context.Context, identifier models.PostIdentifier, nickname string) error {
	deleted, err := s.scrapRepo.Remove(identifier, nickname)
	if err != nil {
		return err
	}
	if deleted == nil {
		return nil
	}
	if err := s.postRepo.DecreaseScrapCount(identifier); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.PostUnscrappedEvent{
		PostIdentifier: identifier,
		Nickname:       nickname,
		ScrappedAt:     deleted.CreatedAt,
	})
	return nil
}

// IsUserScrapPost スクラップ済みかどうか
func (s *postScrapService) IsUserScrapPost(identifier models.PostIdentifier, nickname string) (bool, error) {
	return s.scrapRepo.Exists(identifier, nickname)
}

// GetScrapPosts スクラップした投稿一覧を取得（スクラップが古い順）
func (s *postScrapService) GetScrapPosts(nickname string) ([]models.Post, error) {
	scraps, err := s.scrapRepo.ListByNickname(nickname)
	if err != nil {
		return nil, err
	}
	postIDs := make([]uint, 0, len(scraps))
	for _, scrap := range scraps {
		postIDs = append(postIDs, scrap.PostID)
	}
	posts, err := s.postRepo.FindAllByIDs(postIDs)
	if err != nil {
		return nil, err
	}

	// 削除済みの投稿を除き、スクラップ順を保つ
	byID := make(map[uint]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	ordered := make([]models.Post, 0, len(scraps))
	for _, scrap := range scraps {
		if post, ok := byID[scrap.PostID]; ok {
			ordered = append(ordered, post)
		}
	}
	return ordered, nil
}
