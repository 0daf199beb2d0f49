package service

import "errors"

// 核算链路上的业务错误，handler按错误类型映射HTTP状态码
var (
	// ErrMissingInput 单价等必要输入缺失
	ErrMissingInput = errors.New("请先填写克重单价等必要核算输入")
	// ErrMissingDimensions 产品尺寸缺失
	ErrMissingDimensions = errors.New("请先在客户产品上录入长宽高尺寸")
	// ErrIncompleteSubQuotes 必需的分项询价尚未回价
	ErrIncompleteSubQuotes = errors.New("仍有必需的分项询价未回价，无法核算")
	// ErrMissingSaleProduct 产品未关联可售商品，无法开销售订单
	ErrMissingSaleProduct = errors.New("客户产品尚未关联可售商品，无法生成销售订单")
	// ErrInvalidAction 当前状态不允许该动作
	ErrInvalidAction = errors.New("当前状态不允许执行该操作")
)
