package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/shared/feishu"
	"go.uber.org/zap"
)

// SubQuoteService 分项询价服务
// draft → sent → received → approved，回齐后由报价单重新核算收口
type SubQuoteService struct {
	subQuoteRepo *repository.SubQuoteRepository
	inquiryRepo  *repository.InquiryRepository
	feishuClient *feishu.Client
	chatID       string
	logger       *zap.Logger
}

func NewSubQuoteService(repos *repository.Repositories) *SubQuoteService {
	return &SubQuoteService{
		subQuoteRepo: repos.SubQuote,
		inquiryRepo:  repos.Inquiry,
		logger:       zap.NewNop(),
	}
}

// SetFeishuClient 注入飞书客户端和通知群
func (s *SubQuoteService) SetFeishuClient(fc *feishu.Client, chatID string) {
	s.feishuClient = fc
	s.chatID = chatID
}

// SetLogger 注入日志器
func (s *SubQuoteService) SetLogger(l *zap.Logger) {
	s.logger = l
}

// ListByInquiry 查询报价单的分项询价
func (s *SubQuoteService) ListByInquiry(ctx context.Context, inquiryID string) ([]entity.SubQuote, error) {
	inq, err := s.inquiryRepo.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
	}
	return inq.SubQuotes, nil
}

// MarkSentReq 发送分项询价请求
type MarkSentReq struct {
	VendorID string `json:"vendor_id" binding:"required"`
	Remark   string `json:"remark"`
}

// MarkSent 把分项询价发给供应商，并建飞书任务提醒跟单
func (s *SubQuoteService) MarkSent(ctx context.Context, id string, req MarkSentReq, operatorID string) (*entity.SubQuote, error) {
	sq, err := s.subQuoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: 分项询价不存在", repository.ErrNotFound)
	}
	if !entity.CanTransitionSubQuote(sq.State, entity.SubQuoteStateSent) {
		return nil, fmt.Errorf("%w: 分项询价状态 %s 不能发送", ErrInvalidAction, sq.State)
	}

	sq.State = entity.SubQuoteStateSent
	sq.VendorID = req.VendorID
	if req.Remark != "" {
		sq.Remark = req.Remark
	}
	if err := s.subQuoteRepo.Update(ctx, sq); err != nil {
		return nil, fmt.Errorf("更新分项询价失败: %w", err)
	}

	if s.feishuClient != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			due := time.Now().Add(48 * time.Hour)
			guid, err := s.feishuClient.CreateTask(nctx, feishu.CreateTaskReq{
				Summary:     fmt.Sprintf("跟进 %s 分项询价回价", subQuoteTypeNames[sq.QuoteType]),
				Description: fmt.Sprintf("报价单分项 %s 已发供应商，两天内确认回价", sq.ID),
				Due:         &feishu.TaskDue{Time: due.UnixMilli()},
			})
			if err != nil {
				s.logger.Warn("create sub-quote follow-up task failed", zap.Error(err))
				return
			}
			// guid落单上，回价后关闭任务
			if err := s.subQuoteRepo.SetFollowUpTask(nctx, sq.ID, guid); err != nil {
				s.logger.Warn("persist sub-quote follow-up task failed",
					zap.String("sub_quote_id", sq.ID), zap.Error(err))
			}
		}()
	}

	return sq, nil
}

// RecordCostReq 回价请求
type RecordCostReq struct {
	EstimatedCost float64 `json:"estimated_cost" binding:"required"`
	Remark        string  `json:"remark"`
}

// RecordCost 记录供应商回价
func (s *SubQuoteService) RecordCost(ctx context.Context, id string, req RecordCostReq, operatorID string) (*entity.SubQuote, error) {
	if req.EstimatedCost <= 0 {
		return nil, fmt.Errorf("回价金额必须大于零")
	}

	sq, err := s.subQuoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: 分项询价不存在", repository.ErrNotFound)
	}
	if !entity.CanTransitionSubQuote(sq.State, entity.SubQuoteStateReceived) {
		return nil, fmt.Errorf("%w: 分项询价状态 %s 不能回价", ErrInvalidAction, sq.State)
	}

	sq.State = entity.SubQuoteStateReceived
	sq.EstimatedCost = req.EstimatedCost
	if req.Remark != "" {
		sq.Remark = req.Remark
	}
	if err := s.subQuoteRepo.Update(ctx, sq); err != nil {
		return nil, fmt.Errorf("更新分项询价失败: %w", err)
	}

	// 回价到位，关闭发送时建的跟单任务
	if taskID := sq.FollowUpTaskID; taskID != "" && s.feishuClient != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.feishuClient.CompleteTask(nctx, taskID); err != nil {
				s.logger.Warn("complete sub-quote follow-up task failed",
					zap.String("sub_quote_id", sq.ID), zap.Error(err))
				return
			}
			if err := s.subQuoteRepo.SetFollowUpTask(nctx, sq.ID, ""); err != nil {
				s.logger.Warn("clear sub-quote follow-up task failed",
					zap.String("sub_quote_id", sq.ID), zap.Error(err))
			}
		}()
	}
	return sq, nil
}

// Approve 确认分项回价
func (s *SubQuoteService) Approve(ctx context.Context, id string, operatorID string) (*entity.SubQuote, error) {
	sq, err := s.subQuoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: 分项询价不存在", repository.ErrNotFound)
	}
	if !entity.CanTransitionSubQuote(sq.State, entity.SubQuoteStateApproved) {
		return nil, fmt.Errorf("%w: 分项询价状态 %s 不能确认", ErrInvalidAction, sq.State)
	}

	sq.State = entity.SubQuoteStateApproved
	if err := s.subQuoteRepo.Update(ctx, sq); err != nil {
		return nil, fmt.Errorf("更新分项询价失败: %w", err)
	}
	return sq, nil
}
