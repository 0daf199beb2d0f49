package feishu

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// 消息卡片服务 — 发送飞书交互式消息卡片
// 报价流程的关键节点（等待分项询价、核算完成、客户接受/拒绝）都走卡片通知
// =============================================================================

// SendCard 向群聊发送消息卡片
func (c *Client) SendCard(ctx context.Context, chatID string, card InteractiveCard) error {
	return c.sendCard(ctx, "chat_id", chatID, card)
}

// SendUserCard 向个人发送消息卡片
func (c *Client) SendUserCard(ctx context.Context, userID string, card InteractiveCard) error {
	return c.sendCard(ctx, "open_id", userID, card)
}

func (c *Client) sendCard(ctx context.Context, idType, id string, card InteractiveCard) error {
	cardBytes, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("序列化卡片内容失败: %w", err)
	}

	reqBody := map[string]interface{}{
		"receive_id_type": idType,
		"receive_id":      id,
		"msg_type":        "interactive",
		"content":         string(cardBytes),
	}

	path := fmt.Sprintf("/open-apis/im/v1/messages?receive_id_type=%s", idType)

	var resp SendMessageResponse
	if err := c.doRequest(ctx, "POST", path, reqBody, &resp); err != nil {
		return fmt.Errorf("发送消息卡片失败: %w", err)
	}

	return nil
}

// =============================================================================
// 预设卡片模板 — 报价业务通知卡片
// =============================================================================

// NewSubQuotesRequestedCard 创建分项询价提醒卡片
// 报价单进入等待分项询价状态时，通知采购跟进供应商回价
// pendingTypes: 尚未回价的分项名称列表
func NewSubQuotesRequestedCard(inquiryCode, customerName, productName string, pendingTypes []string) InteractiveCard {
	typeStr := ""
	for i, t := range pendingTypes {
		if i > 0 {
			typeStr += "、"
		}
		typeStr += t
	}

	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "📦 报价单等待分项询价"},
			Template: "orange",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**报价单号**\n%s", inquiryCode)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**客户**\n%s", customerName)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**产品**\n%s", productName)}},
				},
			},
			{
				Tag:  "div",
				Text: &CardText{Tag: "lark_md", Content: fmt.Sprintf("**待回价分项**\n%s", typeStr)},
			},
			{Tag: "hr"},
			{
				Tag: "note",
				Elements: []CardElement{
					{Tag: "plain_text", Content: "所有必需分项回价后才能完成核算"},
				},
			},
		},
	}
}

// NewQuoteCalculatedCard 创建核算完成通知卡片
func NewQuoteCalculatedCard(inquiryCode, customerName string, quantity int, unitPrice, totalPrice float64) InteractiveCard {
	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "🧮 报价单核算完成"},
			Template: "blue",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**报价单号**\n%s", inquiryCode)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**客户**\n%s", customerName)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**数量**\n%d", quantity)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**含税单价**\n%.4f", unitPrice)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**含税总价**\n%.2f", totalPrice)}},
				},
			},
			{Tag: "hr"},
			{
				Tag: "note",
				Elements: []CardElement{
					{Tag: "plain_text", Content: "确认无误后可发送给客户"},
				},
			},
		},
	}
}

// NewQuoteSentCard 创建报价已发送通知卡片
func NewQuoteSentCard(inquiryCode, customerName string, totalPrice float64) InteractiveCard {
	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "📨 报价单已发送客户"},
			Template: "purple",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**报价单号**\n%s", inquiryCode)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**客户**\n%s", customerName)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**含税总价**\n%.2f", totalPrice)}},
				},
			},
			{Tag: "hr"},
			{
				Tag: "note",
				Elements: []CardElement{
					{Tag: "plain_text", Content: "等待客户确认，注意跟进时效"},
				},
			},
		},
	}
}

// NewQuoteDecisionCard 创建客户决定通知卡片（接受/拒绝）
// accepted为真时附销售订单号，为假时附拒绝原因
func NewQuoteDecisionCard(inquiryCode, customerName string, accepted bool, detail string) InteractiveCard {
	template := "green"
	title := "✅ 客户已接受报价"
	detailLabel := "**销售订单**"
	if !accepted {
		template = "red"
		title = "❌ 客户已拒绝报价"
		detailLabel = "**拒绝原因**"
	}

	elements := []CardElement{
		{
			Tag: "div",
			Fields: []CardField{
				{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**报价单号**\n%s", inquiryCode)}},
				{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**客户**\n%s", customerName)}},
			},
		},
	}
	if detail != "" {
		elements = append(elements,
			CardElement{Tag: "hr"},
			CardElement{
				Tag:  "div",
				Text: &CardText{Tag: "lark_md", Content: fmt.Sprintf("%s\n%s", detailLabel, detail)},
			},
		)
	}

	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: title},
			Template: template,
		},
		Elements: elements,
	}
}
