package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/bitfantasy/carton-pricing/internal/carton/testutil"
	"github.com/bitfantasy/carton-pricing/internal/config"
)

func setupInquiryTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	pricingCfg := config.PricingConfig{
		MarginCashPercent:   10,
		MarginCreditPercent: 15,
		TaxPercent:          9,
		PaperPricePerM2:     2.5,
	}
	inquirySvc := service.NewInquiryService(repos, db, nil, pricingCfg)
	subQuoteSvc := service.NewSubQuoteService(repos)
	exportSvc := service.NewExportService(repos)
	storage := service.NewStorageService(nil, "")

	inquiryHandler := NewInquiryHandler(inquirySvc, exportSvc, storage)
	subQuoteHandler := NewSubQuoteHandler(subQuoteSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/carton")
	api.POST("/inquiries", inquiryHandler.Create)
	api.GET("/inquiries", inquiryHandler.List)
	api.GET("/inquiries/pending", inquiryHandler.ListPending)
	api.GET("/inquiries/pending/count", inquiryHandler.PendingCount)
	api.GET("/inquiries/defaults", inquiryHandler.Defaults)
	api.GET("/inquiries/:id", inquiryHandler.Get)
	api.PUT("/inquiries/:id", inquiryHandler.Update)
	api.POST("/inquiries/:id/compute", inquiryHandler.Compute)
	api.POST("/inquiries/:id/send", inquiryHandler.Send)
	api.POST("/inquiries/:id/accept", inquiryHandler.Accept)
	api.POST("/inquiries/:id/reject", inquiryHandler.Reject)
	api.GET("/inquiries/:id/sub-quotes", subQuoteHandler.ListByInquiry)
	api.POST("/sub-quotes/:id/send", subQuoteHandler.MarkSent)
	api.POST("/sub-quotes/:id/cost", subQuoteHandler.RecordCost)
	api.POST("/sub-quotes/:id/approve", subQuoteHandler.Approve)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func createInquiry(t *testing.T, env *testutil.TestEnv, token string, body map[string]interface{}) string {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating inquiry, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

// TestInquiryQuickFlow 快速流程：建单 → 核算 → 发送 → 接受转销售订单
func TestInquiryQuickFlow(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-quick-001")

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
		"quantity":            2000,
	})

	// 核算
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for compute, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["state"] != entity.InquiryStateCalculated {
		t.Fatalf("expected state calculated, got %v", data["state"])
	}
	if data["flat_length_mm"].(float64) <= 0 || data["flat_width_mm"].(float64) <= 0 {
		t.Fatal("expected flat dimensions to be written back")
	}
	if data["base_cost_per_carton"].(float64) <= 0 {
		t.Fatal("expected positive base cost")
	}
	cash := data["sale_price_cash"].(float64)
	credit := data["sale_price_credit"].(float64)
	if credit <= cash {
		t.Fatalf("expected credit price > cash price, got cash=%v credit=%v", cash, credit)
	}
	unitWithTax := data["unit_price_with_tax"].(float64)
	if unitWithTax <= cash {
		t.Fatalf("expected tax to raise the unit price, got %v <= %v", unitWithTax, cash)
	}

	var sugCount int64
	env.DB.Model(&entity.SheetSuggestion{}).Where("inquiry_id = ?", inquiryID).Count(&sugCount)
	if sugCount == 0 {
		t.Fatal("expected sheet suggestions to be persisted")
	}

	// 重复核算是纯重算：结果一致，建议整体重建而不是追加
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 for recompute, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["unit_price_with_tax"].(float64) != unitWithTax {
		t.Fatalf("recompute changed unit price: %v != %v", data2["unit_price_with_tax"], unitWithTax)
	}
	if data2["total_price_with_tax"].(float64) != data["total_price_with_tax"].(float64) {
		t.Fatal("recompute changed total price")
	}
	var sugCount2 int64
	env.DB.Model(&entity.SheetSuggestion{}).Where("inquiry_id = ?", inquiryID).Count(&sugCount2)
	if sugCount2 != sugCount {
		t.Fatalf("expected suggestions to be rebuilt in place, got %d then %d", sugCount, sugCount2)
	}

	// 发送
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/send", nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 for send, got %d: %s", w3.Code, w3.Body.String())
	}

	// 接受：生成销售订单并回填
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/accept", nil, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200 for accept, got %d: %s", w4.Code, w4.Body.String())
	}
	data4 := testutil.ParseResponse(w4)["data"].(map[string]interface{})
	if data4["state"] != entity.InquiryStateAccepted {
		t.Fatalf("expected state accepted, got %v", data4["state"])
	}
	orderID, _ := data4["sale_order_id"].(string)
	if orderID == "" {
		t.Fatal("expected sale_order_id to be set")
	}

	// 重复接受是幂等空操作，不重复开单
	w5 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/accept", nil, token)
	if w5.Code != http.StatusOK {
		t.Fatalf("expected 200 for repeat accept, got %d: %s", w5.Code, w5.Body.String())
	}
	data5 := testutil.ParseResponse(w5)["data"].(map[string]interface{})
	if data5["sale_order_id"].(string) != orderID {
		t.Fatal("repeat accept changed the sales order")
	}
	var orderCount int64
	env.DB.Model(&entity.SalesOrder{}).Where("inquiry_id = ?", inquiryID).Count(&orderCount)
	if orderCount != 1 {
		t.Fatalf("expected exactly 1 sales order, got %d", orderCount)
	}

	// 首单接受后产品置为已生产
	var p entity.CustomerProduct
	env.DB.Where("id = ?", product.ID).First(&p)
	if !p.HasBeenProduced {
		t.Fatal("expected product to be marked as produced")
	}

	// 终态不可再核算
	w6 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w6.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 computing an accepted inquiry, got %d: %s", w6.Code, w6.Body.String())
	}
}

// TestInquiryFullFlowGate 完整流程的分项询价闸口
func TestInquiryFullFlowGate(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-full-001")
	// 产品默认需要印刷和钉箱分项
	env.DB.Model(&entity.CustomerProduct{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{"has_print": true, "need_staple_default": true})

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
		"flow_mode":           entity.FlowModeFull,
		"need_shipping_quote": true,
	})

	// 第一次核算：补建分项、转waiting_quotes、核算报失败
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for gated compute, got %d: %s", w.Code, w.Body.String())
	}

	var inq entity.PriceInquiry
	env.DB.Where("id = ?", inquiryID).First(&inq)
	if inq.State != entity.InquiryStateWaitingQuotes {
		t.Fatalf("expected waiting_quotes after gate, got %s", inq.State)
	}

	var subQuotes []entity.SubQuote
	env.DB.Where("inquiry_id = ?", inquiryID).Find(&subQuotes)
	if len(subQuotes) != 3 {
		t.Fatalf("expected 3 sub-quotes (print/staple/shipping), got %d", len(subQuotes))
	}
	types := map[string]string{}
	for _, sq := range subQuotes {
		types[sq.QuoteType] = sq.ID
		if sq.State != entity.SubQuoteStateDraft {
			t.Fatalf("expected new sub-quote in draft, got %s", sq.State)
		}
	}
	for _, want := range []string{entity.SubQuoteTypePrint, entity.SubQuoteTypeStaple, entity.SubQuoteTypeShipping} {
		if _, ok := types[want]; !ok {
			t.Fatalf("missing %s sub-quote", want)
		}
	}

	// 分项未回价时重复核算：失败、状态不动、不重复建单
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while sub-quotes incomplete, got %d: %s", w2.Code, w2.Body.String())
	}
	env.DB.Where("id = ?", inquiryID).First(&inq)
	if inq.State != entity.InquiryStateWaitingQuotes {
		t.Fatalf("incomplete recompute should not move state, got %s", inq.State)
	}
	var sqCount int64
	env.DB.Model(&entity.SubQuote{}).Where("inquiry_id = ?", inquiryID).Count(&sqCount)
	if sqCount != 3 {
		t.Fatalf("expected sub-quotes not to be duplicated, got %d", sqCount)
	}

	// 各分项走完 发供应商 → 回价
	costs := map[string]float64{
		entity.SubQuoteTypePrint:    800,
		entity.SubQuoteTypeStaple:   500,
		entity.SubQuoteTypeShipping: 1200,
	}
	for qt, id := range types {
		ws := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/sub-quotes/"+id+"/send",
			map[string]interface{}{"vendor_id": "vendor-001"}, token)
		if ws.Code != http.StatusOK {
			t.Fatalf("expected 200 sending %s sub-quote, got %d: %s", qt, ws.Code, ws.Body.String())
		}
		wc := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/sub-quotes/"+id+"/cost",
			map[string]interface{}{"estimated_cost": costs[qt]}, token)
		if wc.Code != http.StatusOK {
			t.Fatalf("expected 200 recording %s cost, got %d: %s", qt, wc.Code, wc.Body.String())
		}
	}

	// 分项齐了再核算：成功，运输成本折回单据
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 once sub-quotes ready, got %d: %s", w3.Code, w3.Body.String())
	}
	data := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if data["state"] != entity.InquiryStateCalculated {
		t.Fatalf("expected calculated, got %v", data["state"])
	}
	if data["shipping_cost"].(float64) != 1200 {
		t.Fatalf("expected shipping cost folded back, got %v", data["shipping_cost"])
	}
	if data["base_cost_per_carton"].(float64) <= 0 {
		t.Fatal("expected positive base cost")
	}
}

// TestAcceptRequiresSaleProduct 产品没挂销售商品时接受报价必须失败
func TestAcceptRequiresSaleProduct(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-nosale-001")
	env.DB.Model(&entity.CustomerProduct{}).Where("id = ?", product.ID).
		Update("sale_product_id", nil)

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})

	for _, step := range []string{"compute", "send"} {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/"+step, nil, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", step, w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/accept", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 accepting without sale product, got %d: %s", w.Code, w.Body.String())
	}

	var inq entity.PriceInquiry
	env.DB.Where("id = ?", inquiryID).First(&inq)
	if inq.State != entity.InquiryStateSent {
		t.Fatalf("failed accept should leave state sent, got %s", inq.State)
	}
	var orderCount int64
	env.DB.Model(&entity.SalesOrder{}).Where("inquiry_id = ?", inquiryID).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("expected no sales order, got %d", orderCount)
	}
}

// TestRejectInquiry 拒绝报价记录原因，终态后不可再发送
func TestRejectInquiry(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-reject-001")
	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})

	for _, step := range []string{"compute", "send"} {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/"+step, nil, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", step, w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/reject",
		map[string]interface{}{"reason": "价格太高", "attachment_keys": []string{"rejections/2026/08/30/a1b2c3d4.pdf"}}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for reject, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["state"] != entity.InquiryStateRejected {
		t.Fatalf("expected rejected, got %v", data["state"])
	}
	if data["rejection_reason"] != "价格太高" {
		t.Fatalf("expected rejection reason recorded, got %v", data["rejection_reason"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/send", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 sending a rejected inquiry, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestSendRequiresCalculated 未核算不能发送
func TestSendRequiresCalculated(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-draft-001")
	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/send", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 sending a draft, got %d: %s", w.Code, w.Body.String())
	}
}

// TestPendingCountAndList 待跟进列表与角标计数
func TestPendingCountAndList(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-pending-001")
	createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})
	createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/pending/count", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for pending count, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["count"].(float64) != 2 {
		t.Fatalf("expected pending count 2, got %v", data["count"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/pending", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 for pending list, got %d: %s", w2.Code, w2.Body.String())
	}
	items := testutil.ParseResponse(w2)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 pending inquiries, got %d", len(items))
	}
}

// TestQuoteDefaults 按产品档案带出报价默认值
func TestQuoteDefaults(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	// 无额外加工需求的普通箱：快速流程
	plain := testutil.SeedProduct(t, env.DB, "prod-def-plain")
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/defaults?product_id="+plain.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["flow_mode"] != entity.FlowModeQuick {
		t.Fatalf("expected quick flow for plain product, got %v", data["flow_mode"])
	}
	if data["quantity"].(float64) != 1000 {
		t.Fatalf("expected default quantity 1000, got %v", data["quantity"])
	}

	// 带印刷且要新印版：完整流程，设计+印刷分项
	printed := testutil.SeedProduct(t, env.DB, "prod-def-print")
	env.DB.Model(&entity.CustomerProduct{}).Where("id = ?", printed.ID).
		Updates(map[string]interface{}{"has_print": true, "need_new_cliche_default": true})
	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/defaults?product_id="+printed.ID, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["flow_mode"] != entity.FlowModeFull {
		t.Fatalf("expected full flow for printed product, got %v", data2["flow_mode"])
	}
	if data2["need_design_quote"] != true || data2["need_print_quote"] != true {
		t.Fatalf("expected design and print quotes needed, got %v", data2)
	}

	// 产品不存在
	w3 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/defaults?product_id=no-such", nil, token)
	if w3.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w3.Code, w3.Body.String())
	}
}

// TestInquiryAuthRequired 未带token访问被拒
func TestInquiryAuthRequired(t *testing.T) {
	env := setupInquiryTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/inquiries/pending/count", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

// seedCartonProduct 指定箱型和刀模的客户产品
func seedCartonProduct(t *testing.T, env *testutil.TestEnv, id, cartonType string, dieID *string) *entity.CustomerProduct {
	t.Helper()
	saleProductID := "sale-" + id
	p := &entity.CustomerProduct{
		ID:              id,
		CustomerID:      "cust-001",
		Name:            "测试产品 " + id,
		CartonType:      cartonType,
		LengthCM:        30,
		WidthCM:         20,
		HeightCM:        15,
		LayerCount:      "5",
		FluteStep:       entity.FluteBC,
		DefaultQuantity: 1000,
		DieID:           dieID,
		SaleProductID:   &saleProductID,
	}
	if err := env.DB.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

// TestLaminatedInquiryCompute 对裱箱核算：覆裱单价进材料成本
func TestLaminatedInquiryCompute(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	die := testutil.SeedDie(t, env.DB, "die-lam-001", 500, 400, 2, 1500)
	product := seedCartonProduct(t, env, "prod-lam-001", entity.CartonTypeLaminated, &die.ID)

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":             product.CustomerID,
		"customer_product_id":     product.ID,
		"quantity":                1000,
		"flow_mode":               entity.FlowModeQuick,
		"paper_price_per_m2":      8.0,
		"lamination_price_per_m2": 3.0,
	})

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for compute, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["state"] != entity.InquiryStateCalculated {
		t.Fatalf("expected calculated, got %v", data["state"])
	}
	if data["lamination_price_per_m2"].(float64) != 3 {
		t.Fatalf("expected lamination price persisted, got %v", data["lamination_price_per_m2"])
	}
	// 刀对刀540x440，500张 × 0.2m² = 100m²，材料 = 100×8 + 100×3 + 1500
	if data["flat_length_mm"].(float64) != 540 || data["flat_width_mm"].(float64) != 440 {
		t.Fatalf("expected flat 540x440, got %vx%v", data["flat_length_mm"], data["flat_width_mm"])
	}
	if got := data["material_cost_total"].(float64); got != 2600 {
		t.Fatalf("expected material 2600 with lamination, got %v", got)
	}
	if got := data["overhead_cost_total"].(float64); got != 390 {
		t.Fatalf("expected overhead 390, got %v", got)
	}
}

// TestDiecutDieOverride 报价单上选的刀模覆盖产品默认刀模
func TestDiecutDieOverride(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	dieA := testutil.SeedDie(t, env.DB, "die-ovr-a", 500, 400, 2, 1500)
	dieB := testutil.SeedDie(t, env.DB, "die-ovr-b", 600, 500, 1, 2000)
	product := seedCartonProduct(t, env, "prod-ovr-001", entity.CartonTypeDiecut, &dieA.ID)

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
		"quantity":            1000,
		"flow_mode":           entity.FlowModeQuick,
		"die_id":              dieB.ID,
		"paper_price_per_m2":  8.0,
	})

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for compute, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	// 用B刀模：刀对刀640x540，1000张 × 0.3m² = 300m²，材料 = 300×8 + 2000
	if data["flat_length_mm"].(float64) != 640 || data["flat_width_mm"].(float64) != 540 {
		t.Fatalf("expected flat 640x540 from override die, got %vx%v", data["flat_length_mm"], data["flat_width_mm"])
	}
	if got := data["material_cost_total"].(float64); got != 4400 {
		t.Fatalf("expected material 4400 from override die, got %v", got)
	}
}

// TestFullFlowDiecutDieGate 完整流程的模切单：缺展开依据报缺刀模，不是分项未齐
func TestFullFlowDiecutDieGate(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := seedCartonProduct(t, env, "prod-dgate-001", entity.CartonTypeDiecut, nil)

	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
		"quantity":            1000,
		"flow_mode":           entity.FlowModeFull,
		"paper_price_per_m2":  8.0,
		"need_shipping_quote": true,
	})

	// 第一次核算：闸口补建运输分项并转waiting_quotes
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for gated compute, got %d: %s", w.Code, w.Body.String())
	}
	var subQuotes []entity.SubQuote
	env.DB.Where("inquiry_id = ?", inquiryID).Find(&subQuotes)
	if len(subQuotes) != 1 || subQuotes[0].QuoteType != entity.SubQuoteTypeShipping {
		t.Fatalf("expected a single shipping sub-quote, got %+v", subQuotes)
	}

	// 分项已建但既无刀模也无手录展开尺寸：报缺刀模而不是分项未齐
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without die, got %d: %s", w2.Code, w2.Body.String())
	}
	if msg := testutil.ParseResponse(w2)["message"].(string); !strings.Contains(msg, "刀模") {
		t.Fatalf("expected missing-die message, got %q", msg)
	}

	// 手录展开尺寸解锁展开校验，这时才轮到分项未齐
	wu := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/inquiries/"+inquiryID,
		map[string]interface{}{"blank_length_mm": 600, "blank_width_mm": 400}, token)
	if wu.Code != http.StatusOK {
		t.Fatalf("expected 200 updating blank dims, got %d: %s", wu.Code, wu.Body.String())
	}
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while sub-quotes incomplete, got %d: %s", w3.Code, w3.Body.String())
	}
	if msg := testutil.ParseResponse(w3)["message"].(string); !strings.Contains(msg, "分项") {
		t.Fatalf("expected incomplete sub-quotes message, got %q", msg)
	}

	// 回价后算料仍需要刀模：单据上补选刀模再核算
	wc := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/sub-quotes/"+subQuotes[0].ID+"/cost",
		map[string]interface{}{"estimated_cost": 800}, token)
	if wc.Code != http.StatusOK {
		t.Fatalf("expected 200 recording shipping cost, got %d: %s", wc.Code, wc.Body.String())
	}
	die := testutil.SeedDie(t, env.DB, "die-dgate-001", 500, 400, 2, 1500)
	wu2 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/inquiries/"+inquiryID,
		map[string]interface{}{"die_id": die.ID}, token)
	if wu2.Code != http.StatusOK {
		t.Fatalf("expected 200 attaching die, got %d: %s", wu2.Code, wu2.Body.String())
	}

	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200 once die attached and sub-quotes ready, got %d: %s", w4.Code, w4.Body.String())
	}
	data := testutil.ParseResponse(w4)["data"].(map[string]interface{})
	if data["state"] != entity.InquiryStateCalculated {
		t.Fatalf("expected calculated, got %v", data["state"])
	}
	// 刀对刀优先于手录尺寸：540x440；材料 = 100×8 + 1500
	if data["flat_length_mm"].(float64) != 540 || data["flat_width_mm"].(float64) != 440 {
		t.Fatalf("expected flat 540x440 from die, got %vx%v", data["flat_length_mm"], data["flat_width_mm"])
	}
	if got := data["material_cost_total"].(float64); got != 2300 {
		t.Fatalf("expected material 2300, got %v", got)
	}
	if data["shipping_cost"].(float64) != 800 {
		t.Fatalf("expected shipping cost folded back, got %v", data["shipping_cost"])
	}
}

// TestUpdateInquiryStateGuard 草稿可改核算输入，发出后不能再改
func TestUpdateInquiryStateGuard(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-upd-001")
	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
	})

	// 草稿：数量、单价都可改
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/inquiries/"+inquiryID,
		map[string]interface{}{"quantity": 500, "paper_price_per_m2": 6.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 updating draft, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["quantity"].(float64) != 500 || data["paper_price_per_m2"].(float64) != 6 {
		t.Fatalf("expected updated inputs, got quantity=%v paper=%v", data["quantity"], data["paper_price_per_m2"])
	}

	// 零数量拒绝
	wz := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/inquiries/"+inquiryID,
		map[string]interface{}{"quantity": 0}, token)
	if wz.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d: %s", wz.Code, wz.Body.String())
	}

	// 发出后不可再改
	for _, step := range []string{"compute", "send"} {
		ws := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/"+step, nil, token)
		if ws.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", step, ws.Code, ws.Body.String())
		}
	}
	w2 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/inquiries/"+inquiryID,
		map[string]interface{}{"quantity": 800}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 updating a sent inquiry, got %d: %s", w2.Code, w2.Body.String())
	}
	var inq entity.PriceInquiry
	env.DB.Where("id = ?", inquiryID).First(&inq)
	if inq.Quantity != 500 {
		t.Fatalf("expected quantity unchanged after rejected update, got %d", inq.Quantity)
	}
}

// TestSubQuoteFollowUpTaskPersistence 跟单任务guid单列落库，回价不丢guid
func TestSubQuoteFollowUpTaskPersistence(t *testing.T) {
	env := setupInquiryTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-task-001")
	inquiryID := createInquiry(t, env, token, map[string]interface{}{
		"customer_id":         product.CustomerID,
		"customer_product_id": product.ID,
		"flow_mode":           entity.FlowModeFull,
		"need_shipping_quote": true,
	})
	testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/inquiries/"+inquiryID+"/compute", nil, token)

	var sq entity.SubQuote
	env.DB.Where("inquiry_id = ?", inquiryID).First(&sq)

	repos := repository.NewRepositories(env.DB)
	if err := repos.SubQuote.SetFollowUpTask(context.Background(), sq.ID, "task-guid-001"); err != nil {
		t.Fatalf("SetFollowUpTask failed: %v", err)
	}
	env.DB.Where("id = ?", sq.ID).First(&sq)
	if sq.FollowUpTaskID != "task-guid-001" {
		t.Fatalf("expected task guid persisted, got %q", sq.FollowUpTaskID)
	}
	if sq.State != entity.SubQuoteStateDraft {
		t.Fatalf("guid write should not touch state, got %s", sq.State)
	}

	// 没配飞书时回价照常走，guid留在单上
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/sub-quotes/"+sq.ID+"/cost",
		map[string]interface{}{"estimated_cost": 600}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 recording cost, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", sq.ID).First(&sq)
	if sq.State != entity.SubQuoteStateReceived || sq.EstimatedCost != 600 {
		t.Fatalf("expected received with cost 600, got state=%s cost=%v", sq.State, sq.EstimatedCost)
	}
	if sq.FollowUpTaskID != "task-guid-001" {
		t.Fatalf("expected guid untouched without feishu, got %q", sq.FollowUpTaskID)
	}
}
