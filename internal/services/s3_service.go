package services

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/xid"
)

// S3Service オブジェクトストレージへのアップロード・削除を行うサービスインターフェース
type S3Service interface {
	Upload(kind models.S3ImageKind, fileName string, contentType string, body io.Reader) (fileKey, fileURL string, err error)
	DeleteImages(kind models.S3ImageKind, fileKeys []string) error
}

// s3Service S3Serviceの実装
type s3Service struct {
	s3       *s3.S3
	uploader *s3manager.Uploader
	cfg      *config.Config
}

// NewS3Service S3Serviceを作成
func NewS3Service(cfg *config.Config) (S3Service, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
	})
	if err != nil {
		return nil, err
	}
	return &s3Service{
		s3:       s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
	}, nil
}

// keyPrefix 画像種別ごとのキープレフィックスを返す
func (s *s3Service) keyPrefix(kind models.S3ImageKind) string {
	if kind == models.S3ImageAvatar {
		return s.cfg.AWS.ProfileAvatarKeyPrefix
	}
	return s.cfg.AWS.PostImageKeyPrefix
}

// Upload 画像をアップロードし、ファイルキーと公開URLを返す
func (s *s3Service) Upload(kind models.S3ImageKind, fileName string, contentType string, body io.Reader) (string, string, error) {
	fileKey := xid.New().String() + filepath.Ext(fileName)
	objectKey := fmt.Sprintf("%s/%s", s.keyPrefix(kind), fileKey)

	result, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.AWS.S3Bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("S3へのアップロードに失敗しました: %w", err)
	}
	return fileKey, result.Location, nil
}

// DeleteImages ファイルキーの画像をまとめて削除する
func (s *s3Service) DeleteImages(kind models.S3ImageKind, fileKeys []string) error {
	if len(fileKeys) == 0 {
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, 0, len(fileKeys))
	for _, fileKey := range fileKeys {
		objects = append(objects, &s3.ObjectIdentifier{
			Key: aws.String(fmt.Sprintf("%s/%s", s.keyPrefix(kind), fileKey)),
		})
	}

	output, err := s.s3.DeleteObjects(&s3.DeleteObjectsInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Delete: &s3.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return fmt.Errorf("S3からの削除に失敗しました: %w", err)
	}
	log.Printf("S3から%d件の画像を削除しました", len(output.Deleted))
	return nil
}
