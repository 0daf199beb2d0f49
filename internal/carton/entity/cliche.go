package entity

import "time"

// 印刷面
const (
	ClicheSideFront = "front"
	ClicheSideBack  = "back"
	ClicheSideBoth  = "both"
)

// Cliche 印版（水墨印刷版/树脂版）
type Cliche struct {
	ID                string `json:"id" gorm:"primaryKey;size:32"`
	CustomerProductID string `json:"customer_product_id" gorm:"size:32;not null;index"`
	Name              string `json:"name" gorm:"size:200;not null"` // 如：LOGO版、A面版
	Color             string `json:"color" gorm:"size:100"`         // 如：红+黑
	Side              string `json:"side" gorm:"size:10"`           // front/back/both

	ClicheCost       float64 `json:"cliche_cost" gorm:"type:decimal(15,2)"`
	PrintCostPer1000 float64 `json:"print_cost_per_1000" gorm:"type:decimal(15,2)"`

	// 定稿图对象键（MinIO），复用于后续订单
	DesignFileKey string `json:"design_file_key" gorm:"size:256"`

	IsLaminate bool `json:"is_laminate"` // 对裱印刷用
	Active     bool `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Cliche) TableName() string {
	return "carton_cliches"
}
