package entity

import "time"

// 销售订单状态
const (
	SalesOrderStateConfirmed = "confirmed"
	SalesOrderStateDone      = "done"
	SalesOrderStateCancelled = "cancelled"
)

// SalesOrder 报价单被客户接受后生成的销售订单
// 一张报价单终生只会生成一张销售订单
type SalesOrder struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	Code       string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerID string `json:"customer_id" gorm:"size:32;not null;index"`
	InquiryID  string `json:"inquiry_id" gorm:"size:32;not null;uniqueIndex"`

	State       string    `json:"state" gorm:"size:20;default:confirmed"`
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(15,2)"`
	CreatedBy   string    `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []SalesOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (SalesOrder) TableName() string {
	return "carton_sales_orders"
}

// SalesOrderItem 销售订单行
type SalesOrderItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	OrderID       string  `json:"order_id" gorm:"size:32;not null;index"`
	SaleProductID string  `json:"sale_product_id" gorm:"size:32;not null"`
	Quantity      int     `json:"quantity" gorm:"not null"`
	UnitPrice     float64 `json:"unit_price" gorm:"type:decimal(15,4)"`
	Amount        float64 `json:"amount" gorm:"type:decimal(15,2)"`

	CreatedAt time.Time `json:"created_at"`
}

func (SalesOrderItem) TableName() string {
	return "carton_so_items"
}
