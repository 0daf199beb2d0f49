package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
)

// SubQuoteRepository 分项询价仓库
type SubQuoteRepository struct {
	db *gorm.DB
}

func NewSubQuoteRepository(db *gorm.DB) *SubQuoteRepository {
	return &SubQuoteRepository{db: db}
}

// Create 创建分项询价
func (r *SubQuoteRepository) Create(ctx context.Context, tx *gorm.DB, sq *entity.SubQuote) error {
	return tx.WithContext(ctx).Create(sq).Error
}

// FindByID 根据ID查询分项询价
func (r *SubQuoteRepository) FindByID(ctx context.Context, id string) (*entity.SubQuote, error) {
	var sq entity.SubQuote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sq, nil
}

// FindByInquiryID 查询报价单的分项询价列表
func (r *SubQuoteRepository) FindByInquiryID(ctx context.Context, tx *gorm.DB, inquiryID string) ([]entity.SubQuote, error) {
	var items []entity.SubQuote
	err := tx.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// Update 更新分项询价
func (r *SubQuoteRepository) Update(ctx context.Context, sq *entity.SubQuote) error {
	return r.db.WithContext(ctx).Save(sq).Error
}

// SetFollowUpTask 单独落跟单任务guid，异步任务回写时不覆盖其他字段
func (r *SubQuoteRepository) SetFollowUpTask(ctx context.Context, id, taskID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SubQuote{}).
		Where("id = ?", id).
		Update("follow_up_task_id", taskID).Error
}
