package entity

import "time"

// Die 刀模（模切/对裱用）
type Die struct {
	ID      string  `json:"id" gorm:"primaryKey;size:32"`
	Name    string  `json:"name" gorm:"size:200;not null"`
	Code    string  `json:"code" gorm:"size:50;index"`
	MakerID *string `json:"maker_id" gorm:"size:32"` // 制版厂/印刷厂

	// 所属客户产品（可空，刀模可先于产品建档）
	ProductID *string `json:"product_id" gorm:"size:32;index"`

	// 刀对刀尺寸（mm）
	BladeLengthMM float64 `json:"blade_length_mm" gorm:"type:decimal(10,2)"`
	BladeWidthMM  float64 `json:"blade_width_mm" gorm:"type:decimal(10,2)"`

	// 每张纸的模数
	CavitiesPerSheet int `json:"cavities_per_sheet" gorm:"default:1"`

	HasLamination bool    `json:"has_lamination"` // 是否用于对裱
	DieCost       float64 `json:"die_cost" gorm:"type:decimal(15,2)"` // 一次性制模费
	IsActive      bool    `json:"is_active" gorm:"default:true"`

	// 刀模图纸对象键（MinIO）
	DesignFileKeys StringList `json:"design_file_keys" gorm:"type:jsonb;default:'[]'"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Die) TableName() string {
	return "carton_dies"
}

// HasBladeDimensions 刀对刀尺寸是否已定稿
func (d *Die) HasBladeDimensions() bool {
	return d != nil && d.BladeLengthMM > 0 && d.BladeWidthMM > 0
}
