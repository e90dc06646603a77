package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB テスト用のインメモリデータベースを開く
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:commands_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserFollow{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.ScrapPost{},
		&models.PostLikeDailyRanking{},
		&models.S3Image{},
	))
	return db
}

// recordingPublisher 発行されたイベントを記録するテスト用パブリッシャー
type recordingPublisher struct {
	events []cqrs.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event cqrs.Event) {
	p.events = append(p.events, event)
}

// eventNames 発行順のイベント名一覧
func (p *recordingPublisher) eventNames() []string {
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}
