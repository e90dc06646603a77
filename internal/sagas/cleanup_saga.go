package sagas

import (
	"context"
	"fmt"
	"log"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/services"
)

// CleanupSaga 投稿削除・退会の後始末を行うsaga。
// コメント・いいね・スクラップ・画像など、親を失ったデータを回収する
type CleanupSaga struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.PostLikeRepository
	scrapRepo   repository.ScrapPostRepository
	imageRepo   repository.S3ImageRepository
	userRepo    repository.UserRepository
	s3Service   services.S3Service
}

// NewCleanupSaga CleanupSagaを作成
func NewCleanupSaga(
	commentRepo repository.CommentRepository,
	likeRepo repository.PostLikeRepository,
	scrapRepo repository.ScrapPostRepository,
	imageRepo repository.S3ImageRepository,
	userRepo repository.UserRepository,
	s3Service services.S3Service,
) *CleanupSaga {
	return &CleanupSaga{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		scrapRepo:   scrapRepo,
		imageRepo:   imageRepo,
		userRepo:    userRepo,
		s3Service:   s3Service,
	}
}

// Register イベントバスに購読登録する
func (s *CleanupSaga) Register(bus *cqrs.EventBus) {
	bus.Subscribe(events.PostDeleted, cqrs.EventHandlerFunc(s.onPostDeleted))
	bus.Subscribe(events.AccountDeleted, cqrs.EventHandlerFunc(s.onAccountDeleted))
}

// onPostDeleted 投稿に紐づいていたデータをまとめて回収する。
// 途中で失敗しても残りの回収は続け、最初のエラーを返す
func (s *CleanupSaga) onPostDeleted(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.PostDeletedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}

	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		log.Printf("投稿削除の後始末に失敗しました: %s: %v", what, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	record("コメント", s.commentRepo.RemoveOrphansOf(e.PostIdentifier))
	record("いいね", s.likeRepo.RemoveOrphansOf(e.PostIdentifier))
	record("スクラップ", s.scrapRepo.RemoveOrphansOf(e.PostIdentifier))
	record("画像", s.removePostImages(e.PostIdentifier.PostID))
	return firstErr
}

// removePostImages 投稿に紐づく画像をS3と記録の両方から削除する
func (s *CleanupSaga) removePostImages(postID uint) error {
	images, err := s.imageRepo.ListByPost(postID)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	fileKeys := make([]string, 0, len(images))
	for _, image := range images {
		fileKeys = append(fileKeys, image.FileKey)
	}
	if err := s.s3Service.DeleteImages(models.S3ImagePost, fileKeys); err != nil {
		return err
	}
	return s.imageRepo.RemoveByKeys(fileKeys)
}

// onAccountDeleted 退会したユーザーのフォロー関係と未使用の
// アップロード画像を回収する。投稿・コメントは残る
func (s *CleanupSaga) onAccountDeleted(ctx context.Context, event cqrs.Event) error {
	e, ok := event.(events.AccountDeletedEvent)
	if !ok {
		return fmt.Errorf("sagas: 想定外のイベント型です: %T", event)
	}

	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		log.Printf("退会の後始末に失敗しました: %s: %v", what, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	record("フォロー関係", s.userRepo.RemoveFollowsOf(e.Nickname))
	record("未使用画像", s.removeUnassociatedImages(e.Nickname))
	return firstErr
}

// removeUnassociatedImages どの投稿にも紐づかなかった画像を回収する
func (s *CleanupSaga) removeUnassociatedImages(nickname string) error {
	images, err := s.imageRepo.ListUnassociatedOf(nickname)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	fileKeys := make([]string, 0, len(images))
	for _, image := range images {
		fileKeys = append(fileKeys, image.FileKey)
	}
	if err := s.s3Service.DeleteImages(models.S3ImagePost, fileKeys); err != nil {
		return err
	}
	return s.imageRepo.RemoveByKeys(fileKeys)
}
