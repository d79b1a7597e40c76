package cart

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	cHandler.RegisterProtectedRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, userID string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestCartRoutes_Basic(t *testing.T) {
	store := NewInMemoryStore(map[string]RawCart{"42": {"1": 1}})
	app := makeAppWithCartHandler(NewHandler(NewService(store, catalog(), nil)))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/cart"] || !routes["/api/v1/cart/:productId<int>"] {
		t.Fatalf("expected cart routes to be registered, got %v", routes)
	}

	if status, _ := doRequest(t, app, "GET", "/api/v1/cart", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", status)
	}

	status, body := doRequest(t, app, "GET", "/api/v1/cart", "", "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"cartCount":1`) {
		t.Fatalf("unexpected cart view %d: %s", status, body)
	}

	status, body = doRequest(t, app, "POST", "/api/v1/cart/1", `{"quantity":2}`, "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"cartCount":3`) || !strings.Contains(body, "Pallet Wrap added to cart!") {
		t.Fatalf("unexpected add response %d: %s", status, body)
	}

	status, body = doRequest(t, app, "POST", "/api/v1/cart/1", `{"quantity":3}`, "42")
	if status != fiber.StatusBadRequest || !strings.Contains(body, "Insufficient stock") {
		t.Fatalf("expected insufficient stock, got %d: %s", status, body)
	}

	status, body = doRequest(t, app, "POST", "/api/v1/cart/2", `{"quantity":"abc"}`, "42")
	if status != fiber.StatusBadRequest || !strings.Contains(body, "Quantity must be greater than 0.") {
		t.Fatalf("expected invalid quantity, got %d: %s", status, body)
	}

	if status, _ = doRequest(t, app, "POST", "/api/v1/cart/99", `{"quantity":1}`, "42"); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", status)
	}

	status, body = doRequest(t, app, "PUT", "/api/v1/cart/2", `{"quantity":40}`, "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"cartCount":13`) {
		t.Fatalf("expected capped update, got %d: %s", status, body)
	}

	status, body = doRequest(t, app, "DELETE", "/api/v1/cart/2", "", "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"cartCount":3`) {
		t.Fatalf("expected removal, got %d: %s", status, body)
	}

	if status, _ = doRequest(t, app, "DELETE", "/api/v1/cart", "", "42"); status != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear cart, got %d", status)
	}
	status, body = doRequest(t, app, "GET", "/api/v1/cart", "", "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"items":[]`) {
		t.Fatalf("expected empty cart after clear, got %d: %s", status, body)
	}
}

func TestCartRoutes_CorruptSessionCart(t *testing.T) {
	store, mr := setupTestRedis(t)
	app := makeAppWithCartHandler(NewHandler(NewService(store, catalog(), nil)))

	if err := mr.Set("cart:42", `{broken`); err != nil {
		t.Fatalf("seed redis: %v", err)
	}
	status, body := doRequest(t, app, "GET", "/api/v1/cart", "", "42")
	if status != fiber.StatusOK || !strings.Contains(body, `"items":[]`) || !strings.Contains(body, `"cartCount":0`) {
		t.Fatalf("expected empty cart for corrupt session, got %d: %s", status, body)
	}
	if mr.Exists("cart:42") {
		t.Fatalf("expected corrupt cart to be overwritten")
	}
}
