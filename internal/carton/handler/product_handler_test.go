package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/bitfantasy/carton-pricing/internal/carton/testutil"
)

func setupProductTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	productHandler := NewProductHandler(service.NewProductService(repos))
	dieHandler := NewDieHandler(service.NewDieService(repos, service.NewStorageService(nil, "")))

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/carton")
	api.POST("/products", productHandler.Create)
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.PUT("/products/:id", productHandler.Update)
	api.POST("/products/:id/cliches", productHandler.AddCliche)
	api.GET("/products/:id/cliches", productHandler.ListCliches)
	api.POST("/cliches/:id/deactivate", productHandler.DeactivateCliche)
	api.POST("/dies", dieHandler.Create)
	api.GET("/dies", dieHandler.List)
	api.GET("/dies/:id", dieHandler.Get)
	api.PUT("/dies/:id", dieHandler.Update)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestProductCreateAndGet 建档后能按ID查回，默认值生效
func TestProductCreateAndGet(t *testing.T) {
	env := setupProductTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"customer_id": "cust-001",
		"name":        "五层BC瓦楞外箱",
		"carton_type": entity.CartonTypeNormal,
		"length_cm":   40,
		"width_cm":    30,
		"height_cm":   25,
		"layer_count": "5",
		"flute_step":  entity.FluteBC,
		"has_print":   true,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/products", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	productID := data["id"].(string)
	if data["default_quantity"].(float64) != 1000 {
		t.Fatalf("expected default quantity 1000, got %v", data["default_quantity"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/products/"+productID, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["name"] != "五层BC瓦楞外箱" {
		t.Fatalf("unexpected name %v", data2["name"])
	}
	if data2["has_print"] != true {
		t.Fatal("expected has_print true")
	}

	// 部分更新：只动尺寸，名称不变
	w3 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/products/"+productID,
		map[string]interface{}{"height_cm": 28}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", w3.Code, w3.Body.String())
	}
	data3 := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if data3["height_cm"].(float64) != 28 {
		t.Fatalf("expected height 28, got %v", data3["height_cm"])
	}
	if data3["name"] != "五层BC瓦楞外箱" {
		t.Fatalf("partial update should keep name, got %v", data3["name"])
	}
}

// TestProductNotFound 查不存在的产品返回404
func TestProductNotFound(t *testing.T) {
	env := setupProductTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/products/no-such-id", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestClicheLifecycle 印版挂在产品下：新增、列表、停用
func TestClicheLifecycle(t *testing.T) {
	env := setupProductTest(t)
	token := testutil.DefaultTestToken()

	product := testutil.SeedProduct(t, env.DB, "prod-cliche-001")

	body := map[string]interface{}{
		"name":                "LOGO版",
		"color":               "红+黑",
		"side":                "front",
		"cliche_cost":         350,
		"print_cost_per_1000": 60,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/products/"+product.ID+"/cliches", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	clicheID := data["id"].(string)
	if data["active"] != true {
		t.Fatal("expected new cliche active")
	}

	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/carton/products/"+product.ID+"/cliches", nil, token)
	items := testutil.ParseResponse(w2)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 cliche, got %d", len(items))
	}

	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/cliches/"+clicheID+"/deactivate", nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	data3 := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if data3["active"] != false {
		t.Fatal("expected cliche deactivated")
	}
}

// TestDieCreateAndUpdate 刀模建档与刀对刀尺寸定稿
func TestDieCreateAndUpdate(t *testing.T) {
	env := setupProductTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/carton/dies",
		map[string]interface{}{"name": "彩盒刀模A", "die_cost": 1800}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	dieID := data["id"].(string)
	// 未填模数时落默认1
	if data["cavities_per_sheet"].(float64) != 1 {
		t.Fatalf("expected default cavities 1, got %v", data["cavities_per_sheet"])
	}

	// 定稿刀对刀尺寸
	w2 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/carton/dies/"+dieID,
		map[string]interface{}{"blade_length_mm": 620, "blade_width_mm": 410, "cavities_per_sheet": 2}, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["blade_length_mm"].(float64) != 620 || data2["blade_width_mm"].(float64) != 410 {
		t.Fatal("expected blade dimensions saved")
	}
}
