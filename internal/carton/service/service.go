package service

import (
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/config"
	"github.com/bitfantasy/carton-pricing/internal/shared/feishu"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Product  *ProductService
	Die      *DieService
	Inquiry  *InquiryService
	SubQuote *SubQuoteService
	Export   *ExportService
	Storage  *StorageService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// MinIO客户端，没配就降级为不可用，文件接口返回业务错误
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("init minio client failed, file storage disabled", zap.Error(err))
			minioClient = nil
		}
	}
	storage := NewStorageService(minioClient, cfg.MinIO.Bucket)

	inquirySvc := NewInquiryService(repos, db, rdb, cfg.Pricing)
	inquirySvc.SetLogger(logger)
	subQuoteSvc := NewSubQuoteService(repos)
	subQuoteSvc.SetLogger(logger)

	// 飞书通知
	if cfg.Feishu.AppID != "" && cfg.Feishu.AppSecret != "" {
		fc := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		inquirySvc.SetFeishuClient(fc, cfg.Feishu.ChatID)
		subQuoteSvc.SetFeishuClient(fc, cfg.Feishu.ChatID)
	}

	return &Services{
		Product:  NewProductService(repos),
		Die:      NewDieService(repos, storage),
		Inquiry:  inquirySvc,
		SubQuote: subQuoteSvc,
		Export:   NewExportService(repos),
		Storage:  storage,
	}
}
