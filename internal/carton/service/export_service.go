package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 报价单导出服务
type ExportService struct {
	inquiryRepo *repository.InquiryRepository
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{inquiryRepo: repos.Inquiry}
}

var quotationCostRows = []struct {
	label string
	value func(*entity.PriceInquiry) float64
}{
	{"材料成本", func(q *entity.PriceInquiry) float64 { return q.MaterialCostTotal }},
	{"管理费用", func(q *entity.PriceInquiry) float64 { return q.OverheadCostTotal }},
	{"刀模费", func(q *entity.PriceInquiry) float64 { return q.DieCost }},
	{"印版费", func(q *entity.PriceInquiry) float64 { return q.ClicheCost }},
	{"设计费", func(q *entity.PriceInquiry) float64 { return q.DesignCost }},
	{"冲压费", func(q *entity.PriceInquiry) float64 { return q.PunchCostTotal }},
	{"打托缠膜费", func(q *entity.PriceInquiry) float64 { return q.PalletWrapCostTotal }},
	{"运费", func(q *entity.PriceInquiry) float64 { return q.ShippingCost }},
}

// ExportQuotation 导出报价单xlsx：基础信息、成本明细、门幅建议、报价结果
func (s *ExportService) ExportQuotation(ctx context.Context, inquiryID string) (*excelize.File, string, error) {
	inq, err := s.inquiryRepo.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: 报价单不存在", repository.ErrNotFound)
	}

	f := excelize.NewFile()
	sheet := "报价单"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	// 基础信息
	productName := ""
	if inq.CustomerProduct != nil {
		productName = inq.CustomerProduct.Name
	}
	f.SetCellValue(sheet, "A1", "报价单号")
	f.SetCellValue(sheet, "B1", inq.Code)
	f.SetCellValue(sheet, "A2", "产品")
	f.SetCellValue(sheet, "B2", productName)
	f.SetCellValue(sheet, "A3", "箱型")
	f.SetCellValue(sheet, "B3", inq.CartonType)
	f.SetCellValue(sheet, "A4", "数量")
	f.SetCellValue(sheet, "B4", inq.Quantity)
	f.SetCellValue(sheet, "A5", "摊平尺寸(mm)")
	f.SetCellValue(sheet, "B5", fmt.Sprintf("%.0f × %.0f", inq.FlatLengthMM, inq.FlatWidthMM))
	f.SetCellValue(sheet, "A6", "选用门幅(cm)")
	f.SetCellValue(sheet, "B6", inq.IndustrialWidthCM)

	// 成本明细
	row := 8
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "成本项")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "金额")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	row++
	for _, c := range quotationCostRows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.value(inq))
		row++
	}

	// 报价结果
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "单只成本")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inq.BaseCostPerCarton)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "现结单价")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inq.SalePriceCash)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "账期单价")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inq.SalePriceCredit)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "含税单价")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inq.UnitPriceWithTax)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), boldStyle)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "含税总价")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inq.TotalPriceWithTax)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), boldStyle)

	// 门幅建议另起一页
	if len(inq.Suggestions) > 0 {
		sugSheet := "门幅建议"
		f.NewSheet(sugSheet)
		headers := []string{"门幅(cm)", "每排只数", "余料(cm)", "余料率(%)", "需用总长(cm)"}
		for i, h := range headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := col + "1"
			f.SetCellValue(sugSheet, cell, h)
			f.SetCellStyle(sugSheet, cell, cell, headerStyle)
		}
		for i, sug := range inq.Suggestions {
			r := i + 2
			f.SetCellValue(sugSheet, fmt.Sprintf("A%d", r), sug.IndustrialWidthCM)
			f.SetCellValue(sugSheet, fmt.Sprintf("B%d", r), sug.CartonPerRow)
			f.SetCellValue(sugSheet, fmt.Sprintf("C%d", r), sug.WasteCM)
			f.SetCellValue(sugSheet, fmt.Sprintf("D%d", r), sug.WastePercent)
			f.SetCellValue(sugSheet, fmt.Sprintf("E%d", r), sug.TotalLengthCM)
		}
	}

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 20)

	fileName := fmt.Sprintf("%s.xlsx", inq.Code)
	return f, fileName, nil
}
