package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// StorageService 文件存储服务
// 刀模图纸、印版设计稿、拒绝凭证附件都存MinIO，业务表只记对象key
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(client *minio.Client, bucket string) *StorageService {
	return &StorageService{client: client, bucket: bucket}
}

// Available 存储是否已配置
func (s *StorageService) Available() bool {
	return s.client != nil
}

// Upload 上传文件，返回对象key
// prefix 标识业务域，如 dies/rejections
func (s *StorageService) Upload(ctx context.Context, prefix, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("文件存储未配置")
	}

	objectName := fmt.Sprintf("%s/%s/%s%s",
		prefix, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}
	return objectName, nil
}

// DownloadURL 生成限时下载链接
func (s *StorageService) DownloadURL(ctx context.Context, objectName string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("文件存储未配置")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, 15*time.Minute, url.Values{})
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}
