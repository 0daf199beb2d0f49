package entity

import "time"

// 报价单状态
const (
	InquiryStateDraft         = "draft"          // 草稿
	InquiryStateWaitingQuotes = "waiting_quotes" // 等待分项询价
	InquiryStateCalculated    = "calculated"     // 已核算
	InquiryStateSent          = "sent"           // 已报客户
	InquiryStateAccepted      = "accepted"       // 客户接受（终态）
	InquiryStateRejected      = "rejected"       // 客户拒绝（终态）
)

// 流程模式
const (
	FlowModeQuick = "quick" // 快速：直接核算
	FlowModeFull  = "full"  // 完整：先走设计/印刷/钉箱/运输等分项询价
)

// 付款方式
const (
	PaymentTypeCash   = "cash"
	PaymentTypeCredit = "credit"
)

// 报价单动作
const (
	InquiryActionUpdate  = "update"
	InquiryActionCompute = "compute"
	InquiryActionSend    = "send"
	InquiryActionAccept  = "accept"
	InquiryActionReject  = "reject"
)

// ValidInquiryActions 动作 → 允许触发的当前状态
// accepted 包含在 accept 里是为了让重复接受成为幂等空操作，不会重复开单
var ValidInquiryActions = map[string][]string{
	InquiryActionUpdate:  {InquiryStateDraft, InquiryStateWaitingQuotes},
	InquiryActionCompute: {InquiryStateDraft, InquiryStateWaitingQuotes, InquiryStateCalculated},
	InquiryActionSend:    {InquiryStateCalculated},
	InquiryActionAccept:  {InquiryStateSent, InquiryStateAccepted},
	InquiryActionReject:  {InquiryStateSent},
}

// InquiryActionAllowed 当前状态下是否允许执行某动作
func InquiryActionAllowed(action, state string) bool {
	for _, s := range ValidInquiryActions[action] {
		if s == state {
			return true
		}
	}
	return false
}

// IsTerminalInquiryState 是否终态（不再流转）
func IsTerminalInquiryState(state string) bool {
	return state == InquiryStateAccepted || state == InquiryStateRejected
}

// IsPendingInquiryState 是否待跟进状态
func IsPendingInquiryState(state string) bool {
	switch state {
	case InquiryStateDraft, InquiryStateWaitingQuotes, InquiryStateCalculated, InquiryStateSent:
		return true
	}
	return false
}

// PriceInquiry 纸箱/纸板报价单
// 核算结果（摊平尺寸、排刀建议、成本、价格）都是派生数据，每次核算整体重算
type PriceInquiry struct {
	ID                string `json:"id" gorm:"primaryKey;size:32"`
	Code              string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerID        string `json:"customer_id" gorm:"size:32;not null;index"`
	CustomerProductID string `json:"customer_product_id" gorm:"size:32;index"`
	CartonType        string `json:"carton_type" gorm:"size:20"` // 建单时从产品带出

	Quantity int    `json:"quantity" gorm:"not null;default:1000"`
	FlowMode string `json:"flow_mode" gorm:"size:10;default:quick"` // quick/full

	// 刀模（覆盖产品上的默认刀模）
	DieID *string `json:"die_id" gorm:"size:32"`

	// 定稿后手录的展开（blank）尺寸（mm）
	BlankLengthMM float64 `json:"blank_length_mm" gorm:"type:decimal(10,2)"`
	BlankWidthMM  float64 `json:"blank_width_mm" gorm:"type:decimal(10,2)"`

	// 分项询价需求
	NeedDesignQuote   bool `json:"need_design_quote"`
	NeedPrintQuote    bool `json:"need_print_quote"`
	NeedStapleQuote   bool `json:"need_staple_quote"`
	NeedPunchQuote    bool `json:"need_punch_quote"`
	NeedPalletQuote   bool `json:"need_pallet_quote"`
	NeedShippingQuote bool `json:"need_shipping_quote"`

	// 摊平占位尺寸（mm，核算时写入）
	FlatLengthMM float64 `json:"flat_length_mm" gorm:"type:decimal(10,2)"`
	FlatWidthMM  float64 `json:"flat_width_mm" gorm:"type:decimal(10,2)"`

	// 选定的工业门幅（cm）
	IndustrialWidthCM float64 `json:"industrial_width_cm" gorm:"type:decimal(10,2)"`

	// 单价输入
	PaperPricePerM2      float64 `json:"paper_price_per_m2" gorm:"type:decimal(15,4)"`
	LaminationPricePerM2 float64 `json:"lamination_price_per_m2" gorm:"type:decimal(15,4)"` // 仅对裱箱

	// 成本项
	MaterialCostTotal   float64 `json:"material_cost_total" gorm:"type:decimal(15,2)"`
	OverheadCostTotal   float64 `json:"overhead_cost_total" gorm:"type:decimal(15,2)"`
	DieCost             float64 `json:"die_cost" gorm:"type:decimal(15,2)"`
	ClicheCost          float64 `json:"cliche_cost" gorm:"type:decimal(15,2)"`
	DesignCost          float64 `json:"design_cost" gorm:"type:decimal(15,2)"`
	PunchCostTotal      float64 `json:"punch_cost_total" gorm:"type:decimal(15,2)"`
	PalletWrapCostTotal float64 `json:"pallet_wrap_cost_total" gorm:"type:decimal(15,2)"`
	ShippingCost        float64 `json:"shipping_cost" gorm:"type:decimal(15,2)"`

	BaseCostPerCarton float64 `json:"base_cost_per_carton" gorm:"type:decimal(15,4)"`

	// 报价参数与结果
	PaymentType         string  `json:"payment_type" gorm:"size:10;default:cash"`
	MarginCashPercent   float64 `json:"margin_cash_percent" gorm:"type:decimal(6,2)"`
	MarginCreditPercent float64 `json:"margin_credit_percent" gorm:"type:decimal(6,2)"`
	TaxPercent          float64 `json:"tax_percent" gorm:"type:decimal(6,2)"`

	SalePriceCash     float64 `json:"sale_price_cash" gorm:"type:decimal(15,4)"`
	SalePriceCredit   float64 `json:"sale_price_credit" gorm:"type:decimal(15,4)"`
	UnitPriceWithTax  float64 `json:"unit_price_with_tax" gorm:"type:decimal(15,4)"`
	TotalPriceWithTax float64 `json:"total_price_with_tax" gorm:"type:decimal(15,2)"`

	State string `json:"state" gorm:"size:20;default:draft;index"`

	// 接受后生成的销售订单
	SaleOrderID *string `json:"sale_order_id" gorm:"size:32"`

	// 拒绝记录
	RejectionReason         string     `json:"rejection_reason" gorm:"type:text"`
	RejectionAttachmentKeys StringList `json:"rejection_attachment_keys" gorm:"type:jsonb;default:'[]'"`

	// 分项催办的飞书任务guid，核算成功后关闭
	FollowUpTaskID string `json:"follow_up_task_id" gorm:"size:64"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	CustomerProduct *CustomerProduct  `json:"customer_product,omitempty" gorm:"foreignKey:CustomerProductID"`
	Die             *Die              `json:"die,omitempty" gorm:"foreignKey:DieID"`
	Suggestions     []SheetSuggestion `json:"suggestions,omitempty" gorm:"foreignKey:InquiryID"`
	SubQuotes       []SubQuote        `json:"sub_quotes,omitempty" gorm:"foreignKey:InquiryID"`
}

func (PriceInquiry) TableName() string {
	return "carton_price_inquiries"
}

// SheetSuggestion 门幅排刀建议（每次核算整体删建）
type SheetSuggestion struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	InquiryID string `json:"inquiry_id" gorm:"size:32;not null;index"`

	IndustrialWidthCM float64 `json:"industrial_width_cm" gorm:"type:decimal(10,2)"`
	CartonPerRow      int     `json:"carton_per_row"`
	WasteCM           float64 `json:"waste_cm" gorm:"type:decimal(10,2)"`
	WastePercent      float64 `json:"waste_percent" gorm:"type:decimal(6,2)"`
	TotalLengthCM     float64 `json:"total_length_cm" gorm:"type:decimal(15,2)"`

	CreatedAt time.Time `json:"created_at"`
}

func (SheetSuggestion) TableName() string {
	return "carton_sheet_suggestions"
}
