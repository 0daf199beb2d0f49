package pricing

import "math"

// =============================================================================
// 材料与制造费用 — 按箱型选用不同的算料公式
// 普通/纸板按摊平面积算纸，模切/对裱按刀模模数算张数，制造费用为材料的固定比例
// =============================================================================

// 制造费用比例（材料成本的固定乘数）
const (
	overheadRateNormal = 0.10
	overheadRateDiecut = 0.15
)

// DieSpec 参与算料的刀模参数
type DieSpec struct {
	BladeLengthMM    float64
	BladeWidthMM     float64
	CavitiesPerSheet int
	DieCost          float64
}

// CostInput 算料输入
type CostInput struct {
	CartonType string
	Flat       FlatSize
	Quantity   int

	PaperPricePerM2      float64
	LaminationPricePerM2 float64 // 仅对裱箱使用

	Die *DieSpec // 模切/对裱箱必填
}

// CostResult 算料结果
type CostResult struct {
	MaterialCost float64
	OverheadCost float64
}

type costFunc func(CostInput) (CostResult, error)

// 按箱型分发的算料策略表
var costStrategies = map[string]costFunc{
	CartonTypeNormal:    costByFlatArea,
	CartonTypeSheet:     costByFlatArea,
	CartonTypeDiecut:    costDiecut,
	CartonTypeLaminated: costLaminated,
}

// ComputeCosts 计算材料与制造费用
func ComputeCosts(in CostInput) (CostResult, error) {
	if fn, ok := costStrategies[in.CartonType]; ok {
		return fn(in)
	}
	return CostResult{}, nil
}

// costByFlatArea 普通箱/纸板：摊平面积 × 数量 × 纸价
func costByFlatArea(in CostInput) (CostResult, error) {
	totalArea := in.Flat.AreaM2() * float64(in.Quantity)
	material := totalArea * in.PaperPricePerM2
	return CostResult{
		MaterialCost: material,
		OverheadCost: material * overheadRateNormal,
	}, nil
}

// dieSheetArea 模切算料的公共部分：按模数折算张数和总面积
func dieSheetArea(in CostInput) (totalAreaM2 float64, err error) {
	die := in.Die
	if die == nil || die.BladeLengthMM <= 0 || die.BladeWidthMM <= 0 {
		return 0, ErrMissingDieDimensions
	}

	cavities := die.CavitiesPerSheet
	if cavities < 1 {
		cavities = 1
	}

	sheetArea := (die.BladeLengthMM / 1000.0) * (die.BladeWidthMM / 1000.0)
	sheetsNeeded := math.Ceil(float64(in.Quantity) / float64(cavities))
	return sheetArea * sheetsNeeded, nil
}

// costDiecut 模切箱：张数 × 单张面积 × 纸价，加一次性刀模费
func costDiecut(in CostInput) (CostResult, error) {
	totalArea, err := dieSheetArea(in)
	if err != nil {
		return CostResult{}, err
	}

	material := totalArea*in.PaperPricePerM2 + in.Die.DieCost
	return CostResult{
		MaterialCost: material,
		OverheadCost: material * overheadRateDiecut,
	}, nil
}

// costLaminated 对裱箱：在模切算料基础上叠加覆裱费
func costLaminated(in CostInput) (CostResult, error) {
	totalArea, err := dieSheetArea(in)
	if err != nil {
		return CostResult{}, err
	}

	paperCost := totalArea * in.PaperPricePerM2
	laminationCost := totalArea * in.LaminationPricePerM2
	material := paperCost + laminationCost + in.Die.DieCost
	return CostResult{
		MaterialCost: material,
		OverheadCost: material * overheadRateDiecut,
	}, nil
}
