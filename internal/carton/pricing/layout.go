package pricing

import "math"

// =============================================================================
// 门幅排刀 — 在固定的工业门幅目录上评估横向排刀方案
// 逐个门幅独立评估（一维切割启发式），不做跨门幅联合优化，也不做二维套料
// =============================================================================

// IndustrialWidthsCM 工业门幅目录（cm），由分纸机规格决定
var IndustrialWidthsCM = []float64{80, 90, 95, 100, 105, 110, 115, 120, 125, 130, 135, 140}

// EdgeMarginCM 门幅两侧各留的走纸边（cm）
const EdgeMarginCM = 2.0

// Suggestion 单个门幅的排刀评估结果
type Suggestion struct {
	IndustrialWidthCM float64 `json:"industrial_width_cm"`
	CartonPerRow      int     `json:"carton_per_row"`
	WasteCM           float64 `json:"waste_cm"`
	WastePercent      float64 `json:"waste_percent"`
	TotalLengthCM     float64 `json:"total_length_cm"`
}

// SuggestWidths 对目录内每个可行门幅生成一条排刀建议，按门幅升序
// 摊平尺寸为 mm，内部换算为 cm；不可排的门幅直接跳过
func SuggestWidths(flat FlatSize, quantity int) []Suggestion {
	flatW := flat.WidthMM / 10.0
	flatL := flat.LengthMM / 10.0
	if flatW <= 0 || flatL <= 0 || quantity <= 0 {
		return nil
	}

	suggestions := make([]Suggestion, 0, len(IndustrialWidthsCM))
	for _, width := range IndustrialWidthsCM {
		usable := width - 2*EdgeMarginCM
		if usable <= 0 {
			continue
		}

		perRow := int(math.Floor(usable / flatW))
		if perRow <= 0 {
			continue
		}

		waste := usable - float64(perRow)*flatW
		wastePercent := waste / width * 100.0

		rowCount := math.Ceil(float64(quantity) / float64(perRow))
		totalLength := rowCount * flatL

		suggestions = append(suggestions, Suggestion{
			IndustrialWidthCM: width,
			CartonPerRow:      perRow,
			WasteCM:           waste,
			WastePercent:      wastePercent,
			TotalLengthCM:     totalLength,
		})
	}
	return suggestions
}

// BestWidth 返回废边率最低的门幅，供未指定门幅时作默认推荐
func BestWidth(suggestions []Suggestion) (float64, bool) {
	if len(suggestions) == 0 {
		return 0, false
	}
	best := suggestions[0]
	for _, s := range suggestions[1:] {
		if s.WastePercent < best.WastePercent {
			best = s
		}
	}
	return best.IndustrialWidthCM, true
}
