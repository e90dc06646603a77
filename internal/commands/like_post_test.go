package commands

import (
	"context"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/apperror"
	"github.com/KodingCommunity/koding_backend/internal/events"
	"github.com/KodingCommunity/koding_backend/internal/models"
	"github.com/KodingCommunity/koding_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePostIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewPostLikeRepository(db)
	publisher := &recordingPublisher{}
	handler := NewLikePostHandler(postRepo, likeRepo, publisher)

	post := &models.Post{BoardType: models.BoardCommon, Title: "タイトル", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(post))
	cmd := LikePostCommand{Identifier: post.Identifier(), Nickname: "bob"}

	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	found, err := postRepo.FindByIdentifier(post.Identifier())
	require.NoError(t, err)
	assert.Equal(t, 1, found.LikeCount, "2回いいねしてもカウントは1のまま")
	assert.Equal(t, []string{events.PostLiked}, publisher.eventNames())
}

func TestLikePostMissingPost(t *testing.T) {
	db := newTestDB(t)
	handler := NewLikePostHandler(
		repository.NewPostRepository(db),
		repository.NewPostLikeRepository(db),
		&recordingPublisher{},
	)

	_, err := handler.Handle(context.Background(), LikePostCommand{
		Identifier: models.PostIdentifier{BoardType: models.BoardCommon, PostID: 999},
		Nickname:   "bob",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrNotFound))
}

func TestUnlikePostEmitsOriginalLikeTime(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewPostLikeRepository(db)
	publisher := &recordingPublisher{}
	like := NewLikePostHandler(postRepo, likeRepo, publisher)
	unlike := NewUnlikePostHandler(postRepo, likeRepo, publisher)

	post := &models.Post{BoardType: models.BoardCommon, Title: "タイトル", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(post))

	_, err := like.Handle(context.Background(), LikePostCommand{Identifier: post.Identifier(), Nickname: "bob"})
	require.NoError(t, err)

	stored, err := likeRepo.Remove(post.Identifier(), "bob")
	require.NoError(t, err)
	require.NotNil(t, stored)
	// Removeで消えたので、いいねし直してから解除する
	_, err = like.Handle(context.Background(), LikePostCommand{Identifier: post.Identifier(), Nickname: "bob"})
	require.NoError(t, err)

	_, err = unlike.Handle(context.Background(), UnlikePostCommand{Identifier: post.Identifier(), Nickname: "bob"})
	require.NoError(t, err)

	found, err := postRepo.FindByIdentifier(post.Identifier())
	require.NoError(t, err)
	assert.Equal(t, 1, found.LikeCount)

	last := publisher.events[len(publisher.events)-1]
	unliked, ok := last.(events.PostUnlikedEvent)
	require.True(t, ok)
	assert.False(t, unliked.LikedAt.IsZero(), "元のいいね日時を引き継ぐ")

	// いいねしていないユーザーの解除は何も起きない
	before := len(publisher.events)
	_, err = unlike.Handle(context.Background(), UnlikePostCommand{Identifier: post.Identifier(), Nickname: "carol"})
	require.NoError(t, err)
	assert.Equal(t, before, len(publisher.events))
}

func TestAddCommentPublishesEvent(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	publisher := &recordingPublisher{}
	handler := NewAddCommentHandler(commentRepo, postRepo, userRepo, publisher)

	writer := &models.User{Email: "b@example.com", Nickname: "bob", Password: "hashed", EmailSignupVerified: true}
	require.NoError(t, userRepo.Create(writer))
	post := &models.Post{BoardType: models.BoardQuestion, Title: "質問", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(post))

	result, err := handler.Handle(context.Background(), AddCommentCommand{
		Identifier:     post.Identifier(),
		WriterNickname: "bob",
		Content:        "回答です",
	})
	require.NoError(t, err)
	comment := result.(*models.Comment)
	assert.NotEmpty(t, comment.CommentID)
	assert.Equal(t, []string{events.CommentAdded}, publisher.eventNames())
}

func TestAddCommentRequiresVerifiedWriter(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	handler := NewAddCommentHandler(repository.NewCommentRepository(db), postRepo, userRepo, &recordingPublisher{})

	require.NoError(t, userRepo.Create(&models.User{Email: "b@example.com", Nickname: "bob", Password: "hashed"}))
	post := &models.Post{BoardType: models.BoardQuestion, Title: "質問", WriterNickname: "alice"}
	require.NoError(t, postRepo.Create(post))

	_, err := handler.Handle(context.Background(), AddCommentCommand{
		Identifier:     post.Identifier(),
		WriterNickname: "bob",
		Content:        "回答です",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.ErrForbidden))
}
