package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/wholesale-shop/internal/cart"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []order.Order
	err    error
}

func (p *recordingPublisher) PublishOrderCompleted(_ context.Context, o order.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, o)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type handlerFixture struct {
	*fixture
	carts     *cart.InMemoryStore
	publisher *recordingPublisher
	app       *fiber.App
}

func newHandlerFixture(t *testing.T, seed map[string]cart.RawCart) *handlerFixture {
	t.Helper()
	f := newFixture(t)
	carts := cart.NewInMemoryStore(seed)
	pub := &recordingPublisher{}
	h := NewHandler(f.engine, cart.NewService(carts, f.products, zap.NewNop()), pub, zap.NewNop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return &handlerFixture{fixture: f, carts: carts, publisher: pub, app: app}
}

func (hf *handlerFixture) post(t *testing.T, body string) (int, map[string]any, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, err := hf.app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return res.StatusCode, out, res.Header.Get("Location")
}

func TestCheckoutHandler_EndToEnd(t *testing.T) {
	hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 2}})

	status, body, _ := hf.post(t, `{"buyerName":"Ann Buyer","buyerEmail":"Ann@Example.com"}`)
	require.Equal(t, fiber.StatusCreated, status, "body: %v", body)
	assert.Contains(t, body["message"], "placed successfully")

	assert.Equal(t, 3, hf.stock(t, 1))

	stored, err := hf.orders.ListByBuyerEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "20.00", stored[0].TotalPrice.StringFixed(2))
	require.Len(t, stored[0].Items, 1)
	assert.Equal(t, 2, stored[0].Items[0].Quantity)

	remaining, err := hf.carts.GetCart(context.Background(), "42")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	require.Len(t, hf.publisher.orders, 1)
	assert.Equal(t, stored[0].ID, hf.publisher.orders[0].ID)
}

func TestCheckoutHandler_CapsCartBeforeCommit(t *testing.T) {
	hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 9, "2": "1"}})

	status, body, _ := hf.post(t, `{"buyerName":"Ann","buyerEmail":"ann@example.com"}`)
	require.Equal(t, fiber.StatusCreated, status, "body: %v", body)
	assert.Equal(t, 0, hf.stock(t, 1))
	assert.Equal(t, 9, hf.stock(t, 2))
}

func TestCheckoutHandler_EmptyCartRedirects(t *testing.T) {
	hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"99": 1}})

	req := httptest.NewRequest("GET", "/api/v1/checkout", nil)
	req.Header.Set("X-User-ID", "42")
	res, err := hf.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, res.StatusCode)
	assert.Equal(t, "/api/v1/products", res.Header.Get("Location"))

	status, _, location := hf.post(t, `{"buyerName":"Ann","buyerEmail":"ann@example.com"}`)
	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, "/api/v1/products", location)
}

func TestCheckoutHandler_CorruptSessionCartRedirects(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	carts := cart.NewService(cart.NewRedisStore(client, time.Hour), f.products, zap.NewNop())
	h := NewHandler(f.engine, carts, &recordingPublisher{}, zap.NewNop())
	hf := &handlerFixture{fixture: f, app: fiber.New()}
	hf.app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": 42}})
		return c.Next()
	})
	h.RegisterProtectedRoutes(hf.app)

	require.NoError(t, mr.Set("cart:42", `{broken`))
	res, err := hf.app.Test(httptest.NewRequest("GET", "/api/v1/checkout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, res.StatusCode)

	require.NoError(t, mr.Set("cart:42", `"oops"`))
	status, _, location := hf.post(t, `{"buyerName":"Ann","buyerEmail":"ann@example.com"}`)
	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, "/api/v1/products", location)
	assert.False(t, mr.Exists("cart:42"))
	assert.Equal(t, 5, hf.stock(t, 1))
}

func TestCheckoutHandler_ShowsSnapshot(t *testing.T) {
	hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 2}})

	req := httptest.NewRequest("GET", "/api/v1/checkout", nil)
	req.Header.Set("X-User-ID", "42")
	res, err := hf.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(b), `"totalPrice":"20"`)
	assert.Contains(t, string(b), `"cartCount":2`)
}

func TestCheckoutHandler_Failures(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		hf := newHandlerFixture(t, nil)
		res, err := hf.app.Test(httptest.NewRequest("POST", "/api/v1/checkout", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 2}})
		status, body, _ := hf.post(t, `{"buyerName":"Ann","buyerEmail":"nope"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Please enter a valid email address.", body["message"])
		assert.NotEmpty(t, body["items"])
		assert.Equal(t, 5, hf.stock(t, 1))
	})

	t.Run("missing name", func(t *testing.T) {
		hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 2}})
		status, body, _ := hf.post(t, `{"buyerName":"  ","buyerEmail":"ann@example.com"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Buyer name is required.", body["message"])
	})

	t.Run("storage failure", func(t *testing.T) {
		hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 2}})
		hf.store.SetFailure(StageCreateItems, errors.New("disk full"))

		status, body, _ := hf.post(t, `{"buyerName":"Ann","buyerEmail":"ann@example.com"}`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "Checkout failed due to invalid cart data.", body["message"])
		assert.Equal(t, 5, hf.stock(t, 1))

		remaining, _ := hf.carts.GetCart(context.Background(), "42")
		assert.NotEmpty(t, remaining)
		assert.Empty(t, hf.publisher.orders)
	})

	t.Run("publish failure keeps order", func(t *testing.T) {
		hf := newHandlerFixture(t, map[string]cart.RawCart{"42": {"1": 1}})
		hf.publisher.err = errors.New("broker down")

		status, _, _ := hf.post(t, `{"buyerName":"Ann","buyerEmail":"ann@example.com"}`)
		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, 4, hf.stock(t, 1))
	})
}

func TestDescribe(t *testing.T) {
	status, code, msg := describe(&InsufficientStockError{ProductName: "Pallet Wrap"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "insufficient_stock", code)
	assert.Equal(t, "Insufficient stock for Pallet Wrap", msg)

	status, _, msg = describe(ErrProductUnavailable)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "One or more products are no longer available.", msg)

	status, _, _ = describe(errors.New("anything else"))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
