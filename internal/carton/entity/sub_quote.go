package entity

import "time"

// 分项询价类型
const (
	SubQuoteTypeDesign   = "design"   // 设计
	SubQuoteTypePrint    = "print"    // 印刷
	SubQuoteTypeStaple   = "staple"   // 钉箱
	SubQuoteTypePunch    = "punch"    // 冲压
	SubQuoteTypePallet   = "pallet"   // 打托缠膜
	SubQuoteTypeShipping = "shipping" // 运输
)

// SubQuoteTypes 固定的分项类型顺序，建单与展示都按这个顺序
var SubQuoteTypes = []string{
	SubQuoteTypeDesign,
	SubQuoteTypePrint,
	SubQuoteTypeStaple,
	SubQuoteTypePunch,
	SubQuoteTypePallet,
	SubQuoteTypeShipping,
}

// 分项询价状态
const (
	SubQuoteStateDraft    = "draft"    // 草稿
	SubQuoteStateSent     = "sent"     // 已发供应商
	SubQuoteStateReceived = "received" // 已回价
	SubQuoteStateApproved = "approved" // 已确认
)

// ValidSubQuoteTransitions 分项询价状态流转
// 电话收价可以不走发送，草稿直接录回价
var ValidSubQuoteTransitions = map[string][]string{
	SubQuoteStateDraft:    {SubQuoteStateSent, SubQuoteStateReceived},
	SubQuoteStateSent:     {SubQuoteStateReceived},
	SubQuoteStateReceived: {SubQuoteStateApproved},
	SubQuoteStateApproved: {},
}

// CanTransitionSubQuote 校验分项询价状态流转是否合法
func CanTransitionSubQuote(from, to string) bool {
	for _, s := range ValidSubQuoteTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsSubQuoteReady 分项询价是否已有可用成本
func IsSubQuoteReady(state string) bool {
	return state == SubQuoteStateReceived || state == SubQuoteStateApproved
}

// SubQuote 分项询价，一张报价单同一类型只有一条
type SubQuote struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	InquiryID string `json:"inquiry_id" gorm:"size:32;not null;uniqueIndex:uk_carton_sub_quote_type"`
	QuoteType string `json:"quote_type" gorm:"size:20;not null;uniqueIndex:uk_carton_sub_quote_type"`

	Required bool   `json:"required" gorm:"default:true"`
	VendorID string `json:"vendor_id" gorm:"size:32"`

	EstimatedCost float64 `json:"estimated_cost" gorm:"type:decimal(15,2)"`
	State         string  `json:"state" gorm:"size:20;default:draft;index"`
	Remark        string  `json:"remark" gorm:"type:text"`

	// 发供应商后建的跟单任务guid，回价后关闭
	FollowUpTaskID string `json:"follow_up_task_id" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SubQuote) TableName() string {
	return "carton_sub_quotes"
}
