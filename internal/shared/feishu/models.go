package feishu

// BaseResponse 飞书API通用响应结构
type BaseResponse struct {
	Code int    `json:"code"` // 错误码，0表示成功
	Msg  string `json:"msg"`  // 错误消息
}

// =============================================================================
// 消息卡片相关模型
// =============================================================================

// InteractiveCard 飞书交互式消息卡片
type InteractiveCard struct {
	Config   *CardConfig   `json:"config,omitempty"`
	Header   *CardHeader   `json:"header,omitempty"`
	Elements []CardElement `json:"elements,omitempty"`
}

// CardConfig 卡片配置
type CardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

// CardHeader 卡片标题
type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template,omitempty"` // 颜色模板：blue/green/red/orange/purple等
}

// CardText 卡片文本
type CardText struct {
	Tag     string `json:"tag"` // plain_text / lark_md
	Content string `json:"content"`
}

// CardElement 卡片元素（通用）
type CardElement struct {
	Tag      string        `json:"tag"` // div/hr/note/markdown等
	Text     *CardText     `json:"text,omitempty"`
	Fields   []CardField   `json:"fields,omitempty"`
	Elements []CardElement `json:"elements,omitempty"` // note元素使用
	Content  string        `json:"content,omitempty"`  // markdown元素使用
}

// CardField 卡片字段
type CardField struct {
	IsShort bool     `json:"is_short"` // 是否短字段（并排显示）
	Text    CardText `json:"text"`
}

// SendMessageResponse 发送消息响应
type SendMessageResponse struct {
	BaseResponse
	Data struct {
		MessageID string `json:"message_id"`
	} `json:"data"`
}

// =============================================================================
// 任务相关模型
// =============================================================================

// TaskMember 任务成员
type TaskMember struct {
	ID   string `json:"id"`   // 成员OpenID
	Role string `json:"role"` // assignee(执行人) / follower(关注人)
}

// TaskDue 任务截止时间
type TaskDue struct {
	Time     int64 `json:"time"` // 毫秒时间戳
	IsAllDay bool  `json:"is_all_day"`
}

// CreateTaskReq 创建任务请求
type CreateTaskReq struct {
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
	Members     []TaskMember `json:"members,omitempty"`
	Due         *TaskDue     `json:"due,omitempty"`
}

// CreateTaskResponse 创建任务响应
type CreateTaskResponse struct {
	BaseResponse
	Data struct {
		Task struct {
			Guid string `json:"guid"` // 任务全局唯一ID
		} `json:"task"`
	} `json:"data"`
}

// CompleteTaskResponse 完成任务响应
type CompleteTaskResponse struct {
	BaseResponse
}
