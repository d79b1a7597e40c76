package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func seedOrders() []Order {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []Order{
		{
			ID: 1, BuyerName: "Ann", BuyerEmail: "ann@example.com", Status: StatusCompleted,
			TotalPrice: decimal.RequireFromString("20.00"), CreatedAt: base,
			Items: []Item{{ID: 1, OrderID: 1, ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")}},
		},
		{
			ID: 2, BuyerName: "Ann", BuyerEmail: "ann@example.com", Status: StatusCompleted,
			TotalPrice: decimal.RequireFromString("5.00"), CreatedAt: base.Add(time.Hour),
			Items: []Item{{ID: 2, OrderID: 2, ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("5.00")}},
		},
		{
			ID: 3, BuyerName: "Bob", BuyerEmail: "bob@example.com", BuyerPhone: "555", Status: StatusCompleted,
			TotalPrice: decimal.RequireFromString("5.00"), CreatedAt: base,
		},
	}
}

func makeApp() *fiber.App {
	app := fiber.New()
	NewHandler(NewService(NewInMemoryRepository(seedOrders()))).RegisterProtectedRoutes(app)
	return app
}

func TestGetOrder(t *testing.T) {
	app := makeApp()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/orders/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"totalPrice":"20"`) || !strings.Contains(string(b), `"quantity":2`) {
		t.Fatalf("unexpected body: %s", string(b))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/orders/99", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestBuyers(t *testing.T) {
	app := makeApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/buyers", nil))
	var buyers []Buyer
	if err := json.NewDecoder(res.Body).Decode(&buyers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buyers) != 2 || buyers[0].Email != "ann@example.com" || buyers[1].Phone != "555" {
		t.Fatalf("unexpected buyers: %+v", buyers)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/buyers/ANN@example.com", nil))
	var body struct {
		Orders []Order `json:"orders"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Orders) != 2 || body.Orders[0].ID != 2 || body.Orders[1].ID != 1 {
		t.Fatalf("expected newest order first, got %+v", body.Orders)
	}
}
