package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/pricing"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/config"
	"github.com/bitfantasy/carton-pricing/internal/shared/feishu"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// redis缓存键
const (
	pendingCountCacheKey       = "carton:inquiry:pending_count"
	productDefaultsCachePrefix = "carton:inquiry:product_defaults:"
)

// 分项询价类型的中文名，用在通知卡片里
var subQuoteTypeNames = map[string]string{
	entity.SubQuoteTypeDesign:   "设计",
	entity.SubQuoteTypePrint:    "印刷",
	entity.SubQuoteTypeStaple:   "钉箱",
	entity.SubQuoteTypePunch:    "冲压",
	entity.SubQuoteTypePallet:   "打托缠膜",
	entity.SubQuoteTypeShipping: "运输",
}

// InquiryService 报价单服务
// compute/send/accept/reject 都在事务里先对报价单加行锁，通知在提交之后才发
type InquiryService struct {
	inquiryRepo  *repository.InquiryRepository
	subQuoteRepo *repository.SubQuoteRepository
	productRepo  *repository.ProductRepository
	dieRepo      *repository.DieRepository
	orderRepo    *repository.SalesOrderRepository
	db           *gorm.DB
	rdb          *redis.Client
	pricingCfg   config.PricingConfig
	feishuClient *feishu.Client
	chatID       string
	logger       *zap.Logger
}

func NewInquiryService(
	repos *repository.Repositories,
	db *gorm.DB,
	rdb *redis.Client,
	pricingCfg config.PricingConfig,
) *InquiryService {
	return &InquiryService{
		inquiryRepo:  repos.Inquiry,
		subQuoteRepo: repos.SubQuote,
		productRepo:  repos.Product,
		dieRepo:      repos.Die,
		orderRepo:    repos.SalesOrder,
		db:           db,
		rdb:          rdb,
		pricingCfg:   pricingCfg,
		logger:       zap.NewNop(),
	}
}

// SetFeishuClient 注入飞书客户端和通知群
func (s *InquiryService) SetFeishuClient(fc *feishu.Client, chatID string) {
	s.feishuClient = fc
	s.chatID = chatID
}

// SetLogger 注入日志器
func (s *InquiryService) SetLogger(l *zap.Logger) {
	s.logger = l
}

// CreateInquiryReq 创建报价单请求
type CreateInquiryReq struct {
	CustomerID           string   `json:"customer_id" binding:"required"`
	CustomerProductID    string   `json:"customer_product_id" binding:"required"`
	Quantity             int      `json:"quantity"`
	FlowMode             string   `json:"flow_mode"`
	DieID                *string  `json:"die_id"`
	PaymentType          string   `json:"payment_type"`
	PaperPricePerM2      float64  `json:"paper_price_per_m2"`
	LaminationPricePerM2 float64  `json:"lamination_price_per_m2"`
	BlankLengthMM        float64  `json:"blank_length_mm"`
	BlankWidthMM         float64  `json:"blank_width_mm"`
	NeedShippingQuote    bool     `json:"need_shipping_quote"`
	MarginCashPct        *float64 `json:"margin_cash_percent"`
	MarginCreditPct      *float64 `json:"margin_credit_percent"`
	TaxPct               *float64 `json:"tax_percent"`
}

// QuoteDefaults 按客户产品推导出的报价表单默认值
type QuoteDefaults struct {
	Quantity        int    `json:"quantity"`
	FlowMode        string `json:"flow_mode"`
	NeedDesignQuote bool   `json:"need_design_quote"`
	NeedPrintQuote  bool   `json:"need_print_quote"`
	NeedStapleQuote bool   `json:"need_staple_quote"`
	NeedPunchQuote  bool   `json:"need_punch_quote"`
	NeedPalletQuote bool   `json:"need_pallet_quote"`
}

// inferQuoteDefaults 从产品档案推导报价默认值
// 没有额外加工需求的纸板/普通箱或已投产产品走快速流程，其余走完整流程
func inferQuoteDefaults(product *entity.CustomerProduct) QuoteDefaults {
	d := QuoteDefaults{
		Quantity:        product.DefaultQuantity,
		NeedDesignQuote: product.HasPrint && product.NeedNewClicheDefault,
		NeedPrintQuote:  product.HasPrint,
		NeedStapleQuote: product.NeedStapleDefault,
		NeedPunchQuote:  product.NeedPunchDefault,
		NeedPalletQuote: product.NeedPalletWrapDefault,
	}

	simple := product.CartonType == entity.CartonTypeSheet ||
		product.CartonType == entity.CartonTypeNormal ||
		product.HasBeenProduced
	extra := d.NeedDesignQuote || d.NeedPrintQuote || d.NeedStapleQuote ||
		d.NeedPunchQuote || d.NeedPalletQuote
	if simple && !extra {
		d.FlowMode = entity.FlowModeQuick
	} else {
		d.FlowMode = entity.FlowModeFull
	}
	return d
}

// Defaults 报价表单默认值，redis短缓存给前端onchange轮询用
func (s *InquiryService) Defaults(ctx context.Context, productID string) (*QuoteDefaults, error) {
	cacheKey := productDefaultsCachePrefix + productID
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var d QuoteDefaults
			if json.Unmarshal(raw, &d) == nil {
				return &d, nil
			}
		}
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	d := inferQuoteDefaults(product)

	if s.rdb != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, 60*time.Second).Err(); err != nil {
				s.logger.Warn("cache product quote defaults failed", zap.Error(err))
			}
		}
	}
	return &d, nil
}

// Create 创建报价单
// 分项询价需求、数量、刀模都从客户产品上带默认值，单据上可改
func (s *InquiryService) Create(ctx context.Context, req CreateInquiryReq, operatorID string) (*entity.PriceInquiry, error) {
	product, err := s.productRepo.FindByID(ctx, req.CustomerProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: 客户产品不存在", ErrMissingInput)
	}

	code, err := s.inquiryRepo.NextCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成报价单编号失败: %w", err)
	}

	defaults := inferQuoteDefaults(product)
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = defaults.Quantity
	}
	flowMode := req.FlowMode
	if flowMode == "" {
		flowMode = defaults.FlowMode
	}
	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = entity.PaymentTypeCash
	}
	dieID := req.DieID
	if dieID == nil {
		dieID = product.DieID
	}
	paperPrice := req.PaperPricePerM2
	if paperPrice <= 0 {
		paperPrice = s.pricingCfg.PaperPricePerM2
	}

	marginCash := s.pricingCfg.MarginCashPercent
	if req.MarginCashPct != nil {
		marginCash = *req.MarginCashPct
	}
	marginCredit := s.pricingCfg.MarginCreditPercent
	if req.MarginCreditPct != nil {
		marginCredit = *req.MarginCreditPct
	}
	tax := s.pricingCfg.TaxPercent
	if req.TaxPct != nil {
		tax = *req.TaxPct
	}

	inq := &entity.PriceInquiry{
		ID:                   uuid.New().String()[:32],
		Code:                 code,
		CustomerID:           req.CustomerID,
		CustomerProductID:    product.ID,
		CartonType:           product.CartonType,
		Quantity:             quantity,
		FlowMode:             flowMode,
		DieID:                dieID,
		PaymentType:          paymentType,
		PaperPricePerM2:      paperPrice,
		LaminationPricePerM2: req.LaminationPricePerM2,
		BlankLengthMM:        req.BlankLengthMM,
		BlankWidthMM:         req.BlankWidthMM,
		// 分项需求默认值来自产品档案
		NeedDesignQuote:      defaults.NeedDesignQuote,
		NeedPrintQuote:       defaults.NeedPrintQuote,
		NeedStapleQuote:      defaults.NeedStapleQuote,
		NeedPunchQuote:       defaults.NeedPunchQuote,
		NeedPalletQuote:      defaults.NeedPalletQuote,
		NeedShippingQuote:    req.NeedShippingQuote,
		MarginCashPercent:    marginCash,
		MarginCreditPercent:  marginCredit,
		TaxPercent:           tax,
		State:                entity.InquiryStateDraft,
		CreatedBy:            operatorID,
	}

	if err := s.inquiryRepo.Create(ctx, inq); err != nil {
		return nil, fmt.Errorf("创建报价单失败: %w", err)
	}

	s.invalidatePendingCount(ctx)
	return inq, nil
}

// Get 获取报价单详情
func (s *InquiryService) Get(ctx context.Context, id string) (*entity.PriceInquiry, error) {
	return s.inquiryRepo.FindByID(ctx, id)
}

// UpdateInquiryReq 修改报价单请求，nil字段不动
type UpdateInquiryReq struct {
	Quantity             *int     `json:"quantity"`
	FlowMode             *string  `json:"flow_mode"`
	DieID                *string  `json:"die_id"`
	PaymentType          *string  `json:"payment_type"`
	PaperPricePerM2      *float64 `json:"paper_price_per_m2"`
	LaminationPricePerM2 *float64 `json:"lamination_price_per_m2"`
	BlankLengthMM        *float64 `json:"blank_length_mm"`
	BlankWidthMM         *float64 `json:"blank_width_mm"`
	IndustrialWidthCM    *float64 `json:"industrial_width_cm"`
	NeedDesignQuote      *bool    `json:"need_design_quote"`
	NeedPrintQuote       *bool    `json:"need_print_quote"`
	NeedStapleQuote      *bool    `json:"need_staple_quote"`
	NeedPunchQuote       *bool    `json:"need_punch_quote"`
	NeedPalletQuote      *bool    `json:"need_pallet_quote"`
	NeedShippingQuote    *bool    `json:"need_shipping_quote"`
	MarginCashPct        *float64 `json:"margin_cash_percent"`
	MarginCreditPct      *float64 `json:"margin_credit_percent"`
	TaxPct               *float64 `json:"tax_percent"`
}

// Update 修改报价单核算输入
// 只有草稿和等分项两个状态可改；改完要重新核算结果才会更新。
// 定稿刀模前手录展开（blank）尺寸就是走这里，让完整流程的模切单能解锁核算
func (s *InquiryService) Update(ctx context.Context, id string, req UpdateInquiryReq, operatorID string) (*entity.PriceInquiry, error) {
	var inq *entity.PriceInquiry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		inq, err = s.inquiryRepo.LockByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
		}
		if !entity.InquiryActionAllowed(entity.InquiryActionUpdate, inq.State) {
			return fmt.Errorf("%w: 状态 %s 不能修改", ErrInvalidAction, inq.State)
		}

		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				return fmt.Errorf("%w: 数量必须大于零", ErrMissingInput)
			}
			inq.Quantity = *req.Quantity
		}
		if req.FlowMode != nil {
			inq.FlowMode = *req.FlowMode
		}
		if req.DieID != nil {
			if _, err := s.dieRepo.FindByID(ctx, *req.DieID); err != nil {
				return fmt.Errorf("%w: 刀模不存在", ErrMissingInput)
			}
			inq.DieID = req.DieID
		}
		if req.PaymentType != nil {
			inq.PaymentType = *req.PaymentType
		}
		if req.PaperPricePerM2 != nil {
			inq.PaperPricePerM2 = *req.PaperPricePerM2
		}
		if req.LaminationPricePerM2 != nil {
			inq.LaminationPricePerM2 = *req.LaminationPricePerM2
		}
		if req.BlankLengthMM != nil {
			inq.BlankLengthMM = *req.BlankLengthMM
		}
		if req.BlankWidthMM != nil {
			inq.BlankWidthMM = *req.BlankWidthMM
		}
		if req.IndustrialWidthCM != nil {
			inq.IndustrialWidthCM = *req.IndustrialWidthCM
		}
		if req.NeedDesignQuote != nil {
			inq.NeedDesignQuote = *req.NeedDesignQuote
		}
		if req.NeedPrintQuote != nil {
			inq.NeedPrintQuote = *req.NeedPrintQuote
		}
		if req.NeedStapleQuote != nil {
			inq.NeedStapleQuote = *req.NeedStapleQuote
		}
		if req.NeedPunchQuote != nil {
			inq.NeedPunchQuote = *req.NeedPunchQuote
		}
		if req.NeedPalletQuote != nil {
			inq.NeedPalletQuote = *req.NeedPalletQuote
		}
		if req.NeedShippingQuote != nil {
			inq.NeedShippingQuote = *req.NeedShippingQuote
		}
		if req.MarginCashPct != nil {
			inq.MarginCashPercent = *req.MarginCashPct
		}
		if req.MarginCreditPct != nil {
			inq.MarginCreditPercent = *req.MarginCreditPct
		}
		if req.TaxPct != nil {
			inq.TaxPercent = *req.TaxPct
		}

		return s.inquiryRepo.Update(ctx, tx, inq)
	})
	if err != nil {
		return nil, err
	}
	return inq, nil
}

// List 报价单列表
func (s *InquiryService) List(ctx context.Context, state, customerID string, page, pageSize int) ([]entity.PriceInquiry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.inquiryRepo.List(ctx, state, customerID, (page-1)*pageSize, pageSize)
}

// ListPending 待跟进报价单列表
func (s *InquiryService) ListPending(ctx context.Context) ([]entity.PriceInquiry, error) {
	return s.inquiryRepo.FindPending(ctx)
}

// PendingCount 待跟进报价单数量，redis缓存60秒给看板轮询用
func (s *InquiryService) PendingCount(ctx context.Context) (int64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, pendingCountCacheKey).Int64(); err == nil {
			return cached, nil
		}
	}

	total, err := s.inquiryRepo.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计待跟进报价单失败: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, pendingCountCacheKey, total, 60*time.Second).Err(); err != nil {
			s.logger.Warn("cache pending inquiry count failed", zap.Error(err))
		}
	}
	return total, nil
}

func (s *InquiryService) invalidatePendingCount(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, pendingCountCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate pending inquiry count failed", zap.Error(err))
	}
}

// Compute 核算报价单
// 完整模式先走分项询价闸口：缺的分项先建出来并转waiting_quotes（这部分会提交），
// 再因分项未齐report失败；全部回价后重新核算才落costs/prices并转calculated
func (s *InquiryService) Compute(ctx context.Context, id string, operatorID string) (*entity.PriceInquiry, error) {
	var (
		inq          *entity.PriceInquiry
		product      *entity.CustomerProduct
		createdTypes []string
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		inq, err = s.inquiryRepo.LockByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
		}

		if !entity.InquiryActionAllowed(entity.InquiryActionCompute, inq.State) {
			return fmt.Errorf("%w: 状态 %s 不能核算", ErrInvalidAction, inq.State)
		}

		// 基础输入校验
		if inq.CustomerID == "" || inq.CustomerProductID == "" || inq.Quantity <= 0 {
			return ErrMissingInput
		}

		product, err = s.findProductTx(ctx, tx, inq.CustomerProductID)
		if err != nil {
			return ErrMissingInput
		}

		// 普通箱/纸板必须有产品尺寸
		if (inq.CartonType == entity.CartonTypeNormal || inq.CartonType == entity.CartonTypeSheet) &&
			!product.HasDimensions() {
			return ErrMissingDimensions
		}

		// 完整模式：分项询价闸口
		if inq.FlowMode == entity.FlowModeFull {
			createdTypes, err = s.ensureSubQuotes(ctx, tx, inq)
			if err != nil {
				return err
			}
			if len(createdTypes) > 0 {
				// 新建了分项：转waiting_quotes提交，核算本身报失败
				inq.State = entity.InquiryStateWaitingQuotes
				return s.inquiryRepo.Update(ctx, tx, inq)
			}

			// 展开依据在分项就绪之前先查：缺刀模要报缺刀模，而不是分项未齐
			if err := s.checkUnfoldBasis(ctx, inq, product); err != nil {
				return err
			}

			subQuotes, err := s.subQuoteRepo.FindByInquiryID(ctx, tx, inq.ID)
			if err != nil {
				return fmt.Errorf("查询分项询价失败: %w", err)
			}
			if !subQuotesReady(subQuotes) {
				// 没建任何新分项且未就绪：整个事务回滚，状态不动
				return ErrIncompleteSubQuotes
			}
			foldBackSubQuoteCosts(inq, subQuotes)
		}

		if err := s.runPipeline(ctx, tx, inq, product); err != nil {
			return err
		}

		inq.State = entity.InquiryStateCalculated
		return s.inquiryRepo.Update(ctx, tx, inq)
	})

	if err != nil {
		return nil, err
	}

	s.invalidatePendingCount(ctx)

	if len(createdTypes) > 0 {
		// 闸口建单成功提交后通知跟进，核算对调用方仍是失败
		s.notifySubQuotesRequested(inq, product, createdTypes)
		return nil, ErrIncompleteSubQuotes
	}

	s.notifyCalculated(inq)
	return inq, nil
}

// findProductTx 在事务内查产品（带刀模）
func (s *InquiryService) findProductTx(ctx context.Context, tx *gorm.DB, id string) (*entity.CustomerProduct, error) {
	var p entity.CustomerProduct
	err := tx.WithContext(ctx).Preload("Die").Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ensureSubQuotes 按need_*标记补建缺失的分项询价，返回新建的类型
func (s *InquiryService) ensureSubQuotes(ctx context.Context, tx *gorm.DB, inq *entity.PriceInquiry) ([]string, error) {
	existing, err := s.subQuoteRepo.FindByInquiryID(ctx, tx, inq.ID)
	if err != nil {
		return nil, fmt.Errorf("查询分项询价失败: %w", err)
	}
	has := make(map[string]bool, len(existing))
	for _, sq := range existing {
		has[sq.QuoteType] = true
	}

	needs := map[string]bool{
		entity.SubQuoteTypeDesign:   inq.NeedDesignQuote,
		entity.SubQuoteTypePrint:    inq.NeedPrintQuote,
		entity.SubQuoteTypeStaple:   inq.NeedStapleQuote,
		entity.SubQuoteTypePunch:    inq.NeedPunchQuote,
		entity.SubQuoteTypePallet:   inq.NeedPalletQuote,
		entity.SubQuoteTypeShipping: inq.NeedShippingQuote,
	}

	var created []string
	for _, t := range entity.SubQuoteTypes {
		if !needs[t] || has[t] {
			continue
		}
		sq := &entity.SubQuote{
			ID:        uuid.New().String()[:32],
			InquiryID: inq.ID,
			QuoteType: t,
			Required:  true,
			State:     entity.SubQuoteStateDraft,
		}
		if err := s.subQuoteRepo.Create(ctx, tx, sq); err != nil {
			return nil, fmt.Errorf("创建分项询价失败: %w", err)
		}
		created = append(created, t)
	}
	return created, nil
}

// subQuotesReady 所有必需分项都已回价且成本为正才算就绪
// 没有任何必需分项也算未就绪，强制走一遍建单收价
func subQuotesReady(subQuotes []entity.SubQuote) bool {
	required := 0
	for _, sq := range subQuotes {
		if !sq.Required {
			continue
		}
		required++
		if !entity.IsSubQuoteReady(sq.State) || sq.EstimatedCost <= 0 {
			return false
		}
	}
	return required > 0
}

// foldBackSubQuoteCosts 分项成本写回报价单成本项
// design一项同时落设计/印版/刀模三个字段，print和staple只做闸口不落字段
func foldBackSubQuoteCosts(inq *entity.PriceInquiry, subQuotes []entity.SubQuote) {
	for _, sq := range subQuotes {
		switch sq.QuoteType {
		case entity.SubQuoteTypeDesign:
			inq.DesignCost = sq.EstimatedCost
			inq.ClicheCost = sq.EstimatedCost
			inq.DieCost = sq.EstimatedCost
		case entity.SubQuoteTypePunch:
			inq.PunchCostTotal = sq.EstimatedCost
		case entity.SubQuoteTypePallet:
			inq.PalletWrapCostTotal = sq.EstimatedCost
		case entity.SubQuoteTypeShipping:
			inq.ShippingCost = sq.EstimatedCost
		}
	}
}

// checkUnfoldBasis 模切/对裱箱在完整流程下的硬校验：
// 刀模刀对刀尺寸和手录展开尺寸必须先有一个，否则不建分项，直接报缺刀模
func (s *InquiryService) checkUnfoldBasis(ctx context.Context, inq *entity.PriceInquiry, product *entity.CustomerProduct) error {
	if inq.CartonType != entity.CartonTypeDiecut && inq.CartonType != entity.CartonTypeLaminated {
		return nil
	}

	die := product.Die
	if inq.DieID != nil {
		d, err := s.dieRepo.FindByID(ctx, *inq.DieID)
		if err != nil {
			return fmt.Errorf("%w: 刀模不存在", repository.ErrNotFound)
		}
		die = d
	}
	if die != nil && die.BladeLengthMM > 0 && die.BladeWidthMM > 0 {
		return nil
	}
	if inq.BlankLengthMM > 0 && inq.BlankWidthMM > 0 {
		return nil
	}
	return pricing.ErrMissingDieDimensions
}

// runPipeline 摊平 → 门幅建议 → 成本 → 价格
func (s *InquiryService) runPipeline(ctx context.Context, tx *gorm.DB, inq *entity.PriceInquiry, product *entity.CustomerProduct) error {
	die := product.Die
	if inq.DieID != nil {
		d, err := s.dieRepo.FindByID(ctx, *inq.DieID)
		if err != nil {
			return fmt.Errorf("%w: 刀模不存在", repository.ErrNotFound)
		}
		die = d
	}

	unfoldIn := pricing.UnfoldInput{
		CartonType:    inq.CartonType,
		LengthCM:      product.LengthCM,
		WidthCM:       product.WidthCM,
		HeightCM:      product.HeightCM,
		BlankLengthMM: inq.BlankLengthMM,
		BlankWidthMM:  inq.BlankWidthMM,
		Strict:        inq.FlowMode == entity.FlowModeFull,
	}
	if die != nil {
		unfoldIn.BladeLengthMM = die.BladeLengthMM
		unfoldIn.BladeWidthMM = die.BladeWidthMM
	}

	flat, err := pricing.Unfold(unfoldIn)
	if err != nil {
		return err
	}
	inq.FlatLengthMM = flat.LengthMM
	inq.FlatWidthMM = flat.WidthMM

	// 门幅建议整体重建
	suggestions := pricing.SuggestWidths(flat, inq.Quantity)
	rows := make([]entity.SheetSuggestion, 0, len(suggestions))
	for _, sug := range suggestions {
		rows = append(rows, entity.SheetSuggestion{
			ID:                uuid.New().String()[:32],
			InquiryID:         inq.ID,
			IndustrialWidthCM: sug.IndustrialWidthCM,
			CartonPerRow:      sug.CartonPerRow,
			WasteCM:           sug.WasteCM,
			WastePercent:      sug.WastePercent,
			TotalLengthCM:     sug.TotalLengthCM,
		})
	}
	if err := s.inquiryRepo.ReplaceSuggestions(ctx, tx, inq.ID, rows); err != nil {
		return fmt.Errorf("写入门幅建议失败: %w", err)
	}
	if inq.IndustrialWidthCM == 0 {
		if best, ok := pricing.BestWidth(suggestions); ok {
			inq.IndustrialWidthCM = best
		}
	}

	costIn := pricing.CostInput{
		CartonType:           inq.CartonType,
		Flat:                 flat,
		Quantity:             inq.Quantity,
		PaperPricePerM2:      inq.PaperPricePerM2,
		LaminationPricePerM2: inq.LaminationPricePerM2,
	}
	if die != nil {
		costIn.Die = &pricing.DieSpec{
			BladeLengthMM:    die.BladeLengthMM,
			BladeWidthMM:     die.BladeWidthMM,
			CavitiesPerSheet: die.CavitiesPerSheet,
			DieCost:          die.DieCost,
		}
	}
	cost, err := pricing.ComputeCosts(costIn)
	if err != nil {
		return err
	}
	inq.MaterialCostTotal = round2(cost.MaterialCost)
	inq.OverheadCostTotal = round2(cost.OverheadCost)

	price, err := pricing.ComputePrices(pricing.PriceInput{
		MaterialCost:        inq.MaterialCostTotal,
		OverheadCost:        inq.OverheadCostTotal,
		DieCost:             inq.DieCost,
		ClicheCost:          inq.ClicheCost,
		DesignCost:          inq.DesignCost,
		PunchCost:           inq.PunchCostTotal,
		PalletWrapCost:      inq.PalletWrapCostTotal,
		ShippingCost:        inq.ShippingCost,
		Quantity:            inq.Quantity,
		MarginCashPercent:   inq.MarginCashPercent,
		MarginCreditPercent: inq.MarginCreditPercent,
		TaxPercent:          inq.TaxPercent,
		PaymentType:         inq.PaymentType,
	})
	if err != nil {
		return err
	}
	inq.BaseCostPerCarton = price.BaseCostPerCarton
	inq.SalePriceCash = price.SalePriceCash
	inq.SalePriceCredit = price.SalePriceCredit
	inq.UnitPriceWithTax = price.UnitPriceWithTax
	inq.TotalPriceWithTax = round2(price.TotalPriceWithTax)

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Send 发送报价给客户
func (s *InquiryService) Send(ctx context.Context, id string, operatorID string) (*entity.PriceInquiry, error) {
	var inq *entity.PriceInquiry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		inq, err = s.inquiryRepo.LockByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
		}
		if !entity.InquiryActionAllowed(entity.InquiryActionSend, inq.State) {
			return fmt.Errorf("%w: 状态 %s 不能发送", ErrInvalidAction, inq.State)
		}
		inq.State = entity.InquiryStateSent
		return s.inquiryRepo.Update(ctx, tx, inq)
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePendingCount(ctx)
	s.notifyAsync(func(ctx context.Context) error {
		return s.feishuClient.SendCard(ctx, s.chatID,
			feishu.NewQuoteSentCard(inq.Code, inq.CustomerID, inq.TotalPriceWithTax))
	})
	return inq, nil
}

// Accept 客户接受报价
// 终生只生成一张销售订单：已接受或已挂单的重复调用是幂等空操作
func (s *InquiryService) Accept(ctx context.Context, id string, operatorID string) (*entity.PriceInquiry, error) {
	var (
		inq     *entity.PriceInquiry
		orderID string
		noop    bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		inq, err = s.inquiryRepo.LockByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
		}
		if !entity.InquiryActionAllowed(entity.InquiryActionAccept, inq.State) {
			return fmt.Errorf("%w: 状态 %s 不能接受", ErrInvalidAction, inq.State)
		}
		if inq.State == entity.InquiryStateAccepted || inq.SaleOrderID != nil {
			noop = true
			return nil
		}

		product, err := s.findProductTx(ctx, tx, inq.CustomerProductID)
		if err != nil {
			return ErrMissingInput
		}
		if product.SaleProductID == nil || *product.SaleProductID == "" {
			return ErrMissingSaleProduct
		}

		code, err := s.orderRepo.NextCode(ctx, tx)
		if err != nil {
			return fmt.Errorf("生成订单编号失败: %w", err)
		}

		order := &entity.SalesOrder{
			ID:          uuid.New().String()[:32],
			Code:        code,
			CustomerID:  inq.CustomerID,
			InquiryID:   inq.ID,
			State:       entity.SalesOrderStateConfirmed,
			TotalAmount: inq.TotalPriceWithTax,
			CreatedBy:   operatorID,
			Items: []entity.SalesOrderItem{
				{
					ID:            uuid.New().String()[:32],
					SaleProductID: *product.SaleProductID,
					Quantity:      inq.Quantity,
					UnitPrice:     inq.UnitPriceWithTax,
					Amount:        inq.TotalPriceWithTax,
				},
			},
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("创建销售订单失败: %w", err)
		}
		orderID = order.Code

		// 首单接受即视为已投产
		if !product.HasBeenProduced {
			if err := tx.WithContext(ctx).Model(&entity.CustomerProduct{}).
				Where("id = ?", product.ID).
				Update("has_been_produced", true).Error; err != nil {
				return fmt.Errorf("更新产品投产标记失败: %w", err)
			}
		}

		inq.SaleOrderID = &order.ID
		inq.State = entity.InquiryStateAccepted
		return s.inquiryRepo.Update(ctx, tx, inq)
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return inq, nil
	}

	s.invalidatePendingCount(ctx)
	s.notifyAsync(func(ctx context.Context) error {
		return s.feishuClient.SendCard(ctx, s.chatID,
			feishu.NewQuoteDecisionCard(inq.Code, inq.CustomerID, true, orderID))
	})
	return inq, nil
}

// RejectReq 拒绝报价请求
type RejectReq struct {
	Reason         string   `json:"reason"`
	AttachmentKeys []string `json:"attachment_keys"`
}

// Reject 客户拒绝报价
func (s *InquiryService) Reject(ctx context.Context, id string, req RejectReq, operatorID string) (*entity.PriceInquiry, error) {
	var inq *entity.PriceInquiry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		inq, err = s.inquiryRepo.LockByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
		}
		if !entity.InquiryActionAllowed(entity.InquiryActionReject, inq.State) {
			return fmt.Errorf("%w: 状态 %s 不能拒绝", ErrInvalidAction, inq.State)
		}
		inq.State = entity.InquiryStateRejected
		inq.RejectionReason = req.Reason
		inq.RejectionAttachmentKeys = req.AttachmentKeys
		return s.inquiryRepo.Update(ctx, tx, inq)
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePendingCount(ctx)
	s.notifyAsync(func(ctx context.Context) error {
		return s.feishuClient.SendCard(ctx, s.chatID,
			feishu.NewQuoteDecisionCard(inq.Code, inq.CustomerID, false, req.Reason))
	})
	return inq, nil
}

// notifySubQuotesRequested 闸口新建分项询价后的跟进通知（带飞书任务提醒）
func (s *InquiryService) notifySubQuotesRequested(inq *entity.PriceInquiry, product *entity.CustomerProduct, createdTypes []string) {
	names := make([]string, 0, len(createdTypes))
	for _, t := range createdTypes {
		names = append(names, subQuoteTypeNames[t])
	}
	productName := ""
	if product != nil {
		productName = product.Name
	}

	s.notifyAsync(func(ctx context.Context) error {
		if err := s.feishuClient.SendCard(ctx, s.chatID,
			feishu.NewSubQuotesRequestedCard(inq.Code, inq.CustomerID, productName, names)); err != nil {
			return err
		}
		// 跟进提醒：三天内催齐分项回价，guid落单上等核算成功后关闭
		due := time.Now().Add(72 * time.Hour)
		guid, err := s.feishuClient.CreateTask(ctx, feishu.CreateTaskReq{
			Summary:     fmt.Sprintf("跟进报价单 %s 的分项询价回价", inq.Code),
			Description: fmt.Sprintf("待回价分项：%v", names),
			Due:         &feishu.TaskDue{Time: due.UnixMilli()},
		})
		if err != nil {
			return err
		}
		if err := s.inquiryRepo.SetFollowUpTask(ctx, inq.ID, guid); err != nil {
			s.logger.Warn("persist inquiry follow-up task failed",
				zap.String("inquiry_id", inq.ID), zap.Error(err))
		}
		return nil
	})
}

func (s *InquiryService) notifyCalculated(inq *entity.PriceInquiry) {
	s.notifyAsync(func(ctx context.Context) error {
		// 分项都回齐核算成功，关闭催办任务
		if inq.FollowUpTaskID != "" {
			if err := s.feishuClient.CompleteTask(ctx, inq.FollowUpTaskID); err != nil {
				s.logger.Warn("complete inquiry follow-up task failed",
					zap.String("inquiry_id", inq.ID), zap.Error(err))
			} else if err := s.inquiryRepo.SetFollowUpTask(ctx, inq.ID, ""); err != nil {
				s.logger.Warn("clear inquiry follow-up task failed",
					zap.String("inquiry_id", inq.ID), zap.Error(err))
			}
		}
		return s.feishuClient.SendCard(ctx, s.chatID,
			feishu.NewQuoteCalculatedCard(inq.Code, inq.CustomerID, inq.Quantity,
				inq.UnitPriceWithTax, inq.TotalPriceWithTax))
	})
}

// notifyAsync 提交后异步发通知，失败只记日志，不影响已提交的状态流转
func (s *InquiryService) notifyAsync(fn func(ctx context.Context) error) {
	if s.feishuClient == nil || s.chatID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("send inquiry notification failed", zap.Error(err))
		}
	}()
}

// IsBusinessError 是否业务校验类错误（映射400而非500）
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrMissingDimensions) ||
		errors.Is(err, ErrIncompleteSubQuotes) ||
		errors.Is(err, ErrMissingSaleProduct) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, pricing.ErrMissingDieDimensions) ||
		errors.Is(err, pricing.ErrInvalidQuantity)
}
