package entity

import "time"

// 箱型
const (
	CartonTypeNormal    = "normal"    // 普通钉粘箱
	CartonTypeDiecut    = "diecut"    // 模切箱
	CartonTypeLaminated = "laminated" // 对裱（裱坑）箱
	CartonTypeSheet     = "sheet"     // 单片纸板
)

// 楞型
const (
	FluteB  = "B"
	FluteC  = "C"
	FluteE  = "E"
	FluteBC = "BC"
	FluteBE = "BE"
)

// CustomerProduct 客户专属产品（纸箱/纸板）
// 尺寸、箱型、默认加工服务等都挂在产品上，报价时按产品带出
type CustomerProduct struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	CustomerID string `json:"customer_id" gorm:"size:32;not null;index"`
	Name       string `json:"name" gorm:"size:200;not null"`
	Code       string `json:"code" gorm:"size:50;index"` // 内部追溯码，如 CP-000123
	CartonType string `json:"carton_type" gorm:"size:20;not null;default:normal"` // normal/diecut/laminated/sheet

	// 成品尺寸（cm）
	LengthCM float64 `json:"length_cm" gorm:"type:decimal(10,2)"`
	WidthCM  float64 `json:"width_cm" gorm:"type:decimal(10,2)"`
	HeightCM float64 `json:"height_cm" gorm:"type:decimal(10,2)"`

	// 结构
	LayerCount string `json:"layer_count" gorm:"size:5;default:5"` // 3/5层
	FluteStep  string `json:"flute_step" gorm:"size:5"`            // B/C/E/BC/BE
	PieceType  string `json:"piece_type" gorm:"size:20"`           // one_piece/half_carton/four_piece
	DoorType   string `json:"door_type" gorm:"size:20"`            // open_uneven/closed/double
	DoorCount  string `json:"door_count" gorm:"size:5"`            // 1/2

	// 印刷与打样
	HasPrint            bool `json:"has_print"`
	IsDimensionBySample bool `json:"is_dimension_by_sample"` // 尺寸按来样
	HasSample           bool `json:"has_sample"`

	// 默认加工服务（新建报价时带出）
	NeedNewClicheDefault  bool `json:"need_new_cliche_default"`
	NeedStapleDefault     bool `json:"need_staple_default"`
	NeedHandleHoleDefault bool `json:"need_handle_hole_default"`
	NeedPunchDefault      bool `json:"need_punch_default"`
	NeedPalletWrapDefault bool `json:"need_pallet_wrap_default"`

	HasBeenProduced bool `json:"has_been_produced"` // 首单接受后自动置位
	DefaultQuantity int  `json:"default_quantity" gorm:"default:1000"`

	// 销售商品（接受报价转销售订单时使用）
	SaleProductID *string `json:"sale_product_id" gorm:"size:32"`

	// 刀模
	DieID *string `json:"die_id" gorm:"size:32"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Die     *Die     `json:"die,omitempty" gorm:"foreignKey:DieID"`
	Cliches []Cliche `json:"cliches,omitempty" gorm:"foreignKey:CustomerProductID"`
}

func (CustomerProduct) TableName() string {
	return "carton_customer_products"
}

// HasDimensions 成品尺寸是否满足该箱型的计算要求
// 纸板只需长宽，其余需要长宽高
func (p *CustomerProduct) HasDimensions() bool {
	if p.CartonType == CartonTypeSheet {
		return p.LengthCM > 0 && p.WidthCM > 0
	}
	return p.LengthCM > 0 && p.WidthCM > 0 && p.HeightCM > 0
}
