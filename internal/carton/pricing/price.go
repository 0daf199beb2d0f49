package pricing

import "errors"

// =============================================================================
// 报价汇总 — 合计各项成本，摊到单只，叠加毛利与税
// =============================================================================

// 付款方式
const (
	PaymentTypeCash   = "cash"   // 现结
	PaymentTypeCredit = "credit" // 账期
)

// ErrInvalidQuantity 数量必须大于零
var ErrInvalidQuantity = errors.New("数量必须大于零")

// PriceInput 报价汇总输入
// 未发生的成本项传零即可
type PriceInput struct {
	MaterialCost   float64
	OverheadCost   float64
	DieCost        float64
	ClicheCost     float64
	DesignCost     float64
	PunchCost      float64
	PalletWrapCost float64
	ShippingCost   float64

	Quantity int

	MarginCashPercent   float64
	MarginCreditPercent float64
	TaxPercent          float64

	PaymentType string // cash/credit，空值按现结
}

// PriceResult 报价汇总结果
type PriceResult struct {
	BaseCostPerCarton float64 `json:"base_cost_per_carton"`
	SalePriceCash     float64 `json:"sale_price_cash"`
	SalePriceCredit   float64 `json:"sale_price_credit"`
	UnitPriceWithTax  float64 `json:"unit_price_with_tax"`
	TotalPriceWithTax float64 `json:"total_price_with_tax"`
}

// ComputePrices 汇总成本并推导现结/账期报价
func ComputePrices(in PriceInput) (PriceResult, error) {
	if in.Quantity <= 0 {
		return PriceResult{}, ErrInvalidQuantity
	}

	totalCost := in.MaterialCost +
		in.OverheadCost +
		in.DieCost +
		in.ClicheCost +
		in.DesignCost +
		in.PunchCost +
		in.PalletWrapCost +
		in.ShippingCost

	base := totalCost / float64(in.Quantity)

	cash := base * (1.0 + in.MarginCashPercent/100.0)
	credit := base * (1.0 + in.MarginCreditPercent/100.0)

	unit := cash
	if in.PaymentType == PaymentTypeCredit {
		unit = credit
	}

	unitWithTax := unit * (1.0 + in.TaxPercent/100.0)

	return PriceResult{
		BaseCostPerCarton: base,
		SalePriceCash:     cash,
		SalePriceCredit:   credit,
		UnitPriceWithTax:  unitWithTax,
		TotalPriceWithTax: unitWithTax * float64(in.Quantity),
	}, nil
}
