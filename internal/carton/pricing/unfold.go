package pricing

import "errors"

// =============================================================================
// 展开计算 — 把纸箱成品尺寸换算为摊平后在原纸上的占位尺寸
// 各箱型的展开公式互相独立，通过策略表按箱型分发
// =============================================================================

// 箱型
const (
	CartonTypeNormal    = "normal"    // 普通钉粘箱
	CartonTypeDiecut    = "diecut"    // 模切箱
	CartonTypeLaminated = "laminated" // 对裱（裱坑）箱
	CartonTypeSheet     = "sheet"     // 单片纸板
)

// 固定工艺常量（mm），不随订单配置
const (
	SideMarginMM    = 20.0 // 每侧修边余量
	GlueAllowanceMM = 40.0 // 粘合搭边
	FlapGapMM       = 10.0 // 摇盖折线让位
)

// ErrMissingDieDimensions 模切/对裱箱既没有刀模刀对刀尺寸，也没有手工录入的展开尺寸
var ErrMissingDieDimensions = errors.New("模切/对裱箱需要先定稿刀模（刀对刀尺寸）或录入展开（blank）尺寸")

// FlatSize 摊平占位尺寸（mm）
type FlatSize struct {
	LengthMM float64 `json:"length_mm"`
	WidthMM  float64 `json:"width_mm"`
}

// IsZero 展开结果是否为空（资料不足）
func (f FlatSize) IsZero() bool {
	return f.LengthMM <= 0 || f.WidthMM <= 0
}

// AreaM2 单只摊平面积（m²）
func (f FlatSize) AreaM2() float64 {
	return (f.LengthMM / 1000.0) * (f.WidthMM / 1000.0)
}

// UnfoldInput 展开计算输入
// 成品尺寸为 cm，刀模与手录展开尺寸为 mm
type UnfoldInput struct {
	CartonType string

	LengthCM float64
	WidthCM  float64
	HeightCM float64

	// 刀模刀对刀尺寸（优先）
	BladeLengthMM float64
	BladeWidthMM  float64

	// 手录展开尺寸（次优先）
	BlankLengthMM float64
	BlankWidthMM  float64

	// Strict 为完整流程：模切/对裱箱缺少展开依据时直接报错，
	// 否则允许退化为用成品长宽估算
	Strict bool
}

type unfoldFunc func(UnfoldInput) (FlatSize, error)

// 按箱型分发的展开策略表
var unfoldStrategies = map[string]unfoldFunc{
	CartonTypeNormal:    unfoldNormal,
	CartonTypeDiecut:    unfoldDiecut,
	CartonTypeLaminated: unfoldDiecut,
	CartonTypeSheet:     unfoldSheet,
}

// Unfold 计算摊平占位尺寸
// 资料不足且非 Strict 时返回零值而不报错，由调用方决定后续处理
func Unfold(in UnfoldInput) (FlatSize, error) {
	if fn, ok := unfoldStrategies[in.CartonType]; ok {
		return fn(in)
	}
	return unfoldFallback(in), nil
}

// unfoldNormal 普通钉粘箱：周长展开 + 搭边，幅宽为高度加上下摇盖
func unfoldNormal(in UnfoldInput) (FlatSize, error) {
	l := in.LengthCM * 10.0
	w := in.WidthCM * 10.0
	h := in.HeightCM * 10.0
	if l <= 0 || w <= 0 || h <= 0 {
		return FlatSize{}, nil
	}

	flatLength := 2*(l+w) + GlueAllowanceMM + 2*SideMarginMM
	flap := w/2 + FlapGapMM // 上下摇盖各为半宽加让位
	flatWidth := h + 2*flap + 2*SideMarginMM

	return FlatSize{LengthMM: flatLength, WidthMM: flatWidth}, nil
}

// unfoldDiecut 模切/对裱箱：展开尺寸取刀模刀对刀，其次手录展开尺寸；
// 快速流程允许退化为成品长宽换算
func unfoldDiecut(in UnfoldInput) (FlatSize, error) {
	var baseL, baseW float64
	switch {
	case in.BladeLengthMM > 0 && in.BladeWidthMM > 0:
		baseL, baseW = in.BladeLengthMM, in.BladeWidthMM
	case in.BlankLengthMM > 0 && in.BlankWidthMM > 0:
		baseL, baseW = in.BlankLengthMM, in.BlankWidthMM
	default:
		if in.Strict {
			// 完整流程下模切生产不可逆，禁止估算
			return FlatSize{}, ErrMissingDieDimensions
		}
		if in.LengthCM <= 0 || in.WidthCM <= 0 || in.HeightCM <= 0 {
			return FlatSize{}, nil
		}
		baseL = in.LengthCM * 10.0
		baseW = in.WidthCM * 10.0
	}

	return FlatSize{
		LengthMM: baseL + 2*SideMarginMM,
		WidthMM:  baseW + 2*SideMarginMM,
	}, nil
}

// unfoldSheet 单片纸板：长宽换算加修边
func unfoldSheet(in UnfoldInput) (FlatSize, error) {
	l := in.LengthCM * 10.0
	w := in.WidthCM * 10.0
	if l <= 0 || w <= 0 {
		return FlatSize{}, nil
	}
	return FlatSize{
		LengthMM: l + 2*SideMarginMM,
		WidthMM:  w + 2*SideMarginMM,
	}, nil
}

// unfoldFallback 未识别箱型的保守估算：周长展开，幅宽按高加宽
func unfoldFallback(in UnfoldInput) FlatSize {
	l := in.LengthCM * 10.0
	w := in.WidthCM * 10.0
	h := in.HeightCM * 10.0
	if l <= 0 || w <= 0 || h <= 0 {
		return FlatSize{}
	}
	return FlatSize{
		LengthMM: 2*(l+w) + 2*SideMarginMM,
		WidthMM:  h + w + 2*SideMarginMM,
	}
}
