package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InquiryRepository 报价单仓库
type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create 创建报价单
func (r *InquiryRepository) Create(ctx context.Context, inq *entity.PriceInquiry) error {
	return r.db.WithContext(ctx).Create(inq).Error
}

// FindByID 根据ID查询报价单（带产品、刀模、排刀建议、分项询价）
func (r *InquiryRepository) FindByID(ctx context.Context, id string) (*entity.PriceInquiry, error) {
	var inq entity.PriceInquiry
	err := r.db.WithContext(ctx).
		Preload("CustomerProduct").
		Preload("CustomerProduct.Die").
		Preload("CustomerProduct.Cliches").
		Preload("Die").
		Preload("Suggestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("waste_percent ASC")
		}).
		Preload("SubQuotes").
		Where("id = ?", id).
		First(&inq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inq, nil
}

// LockByID 在事务内加行锁查询报价单，动作类操作都要先拿锁
func (r *InquiryRepository) LockByID(ctx context.Context, tx *gorm.DB, id string) (*entity.PriceInquiry, error) {
	var inq entity.PriceInquiry
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&inq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inq, nil
}

// NextCode 生成当日流水号报价单编号，如 PQ-20260830-0012
func (r *InquiryRepository) NextCode(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PQ-%s-", time.Now().Format("20060102"))

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PriceInquiry{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// List 查询报价单列表，可按状态和客户过滤
func (r *InquiryRepository) List(ctx context.Context, state, customerID string, offset, limit int) ([]entity.PriceInquiry, int64, error) {
	var items []entity.PriceInquiry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PriceInquiry{})
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("CustomerProduct").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	return items, total, err
}

// FindPending 查询待跟进报价单（未走到终态的）
func (r *InquiryRepository) FindPending(ctx context.Context) ([]entity.PriceInquiry, error) {
	var items []entity.PriceInquiry
	err := r.db.WithContext(ctx).
		Where("state IN ?", []string{
			entity.InquiryStateDraft,
			entity.InquiryStateWaitingQuotes,
			entity.InquiryStateCalculated,
			entity.InquiryStateSent,
		}).
		Preload("CustomerProduct").
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CountPending 统计待跟进报价单数量
func (r *InquiryRepository) CountPending(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PriceInquiry{}).
		Where("state IN ?", []string{
			entity.InquiryStateDraft,
			entity.InquiryStateWaitingQuotes,
			entity.InquiryStateCalculated,
			entity.InquiryStateSent,
		}).
		Count(&total).Error
	return total, err
}

// Update 更新报价单
func (r *InquiryRepository) Update(ctx context.Context, tx *gorm.DB, inq *entity.PriceInquiry) error {
	return tx.WithContext(ctx).Save(inq).Error
}

// SetFollowUpTask 单独落跟进任务guid，异步通知回写时不覆盖其他字段
func (r *InquiryRepository) SetFollowUpTask(ctx context.Context, id, taskID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.PriceInquiry{}).
		Where("id = ?", id).
		Update("follow_up_task_id", taskID).Error
}

// ReplaceSuggestions 整体替换报价单的排刀建议（先删后建）
func (r *InquiryRepository) ReplaceSuggestions(ctx context.Context, tx *gorm.DB, inquiryID string, suggestions []entity.SheetSuggestion) error {
	if err := tx.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Delete(&entity.SheetSuggestion{}).Error; err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&suggestions).Error
}
