package checkout

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/wholesale-shop/internal/cart"
	"github.com/wichananm65/wholesale-shop/internal/events"
	"github.com/wichananm65/wholesale-shop/internal/user"
	"go.uber.org/zap"
)

const emptyCartRedirect = "/api/v1/products"

// Handler serves the checkout page and places orders for the session cart.
type Handler struct {
	engine    *Engine
	carts     *cart.Service
	publisher events.Publisher
	log       *zap.Logger
}

func NewHandler(engine *Engine, carts *cart.Service, publisher events.Publisher, log *zap.Logger) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, carts: carts, publisher: publisher, log: log}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/checkout", h.getCheckout)
	app.Post("/api/v1/checkout", h.placeOrder)
}

type checkoutRequest struct {
	BuyerName  string `json:"buyerName" form:"buyer_name"`
	BuyerEmail string `json:"buyerEmail" form:"buyer_email"`
	BuyerPhone string `json:"buyerPhone" form:"buyer_phone"`
}

func (h *Handler) getCheckout(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	snap, err := h.carts.View(c.UserContext(), key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if snap.Empty() {
		return c.Redirect(emptyCartRedirect, fiber.StatusFound)
	}
	return c.JSON(snap)
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	ctx := c.UserContext()
	snap, err := h.carts.View(ctx, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if snap.Empty() {
		return c.Redirect(emptyCartRedirect, fiber.StatusFound)
	}

	normalized := make(map[string]int, len(snap.Lines))
	for _, l := range snap.Lines {
		normalized[strconv.FormatInt(l.Product.ID, 10)] = l.Quantity
	}

	placed, err := h.engine.Checkout(ctx, Request{
		Cart:       normalized,
		BuyerName:  payload.BuyerName,
		BuyerEmail: payload.BuyerEmail,
		BuyerPhone: payload.BuyerPhone,
	})
	if err != nil {
		status, code, message := describe(err)
		return c.Status(status).JSON(fiber.Map{
			"message":    message,
			"error":      code,
			"items":      snap.Lines,
			"totalPrice": snap.TotalPrice,
			"cartCount":  snap.Count,
		})
	}

	if err := h.carts.Clear(ctx, key); err != nil {
		h.log.Warn("failed to clear cart after checkout", zap.String("session", key), zap.Int64("order_id", placed.ID), zap.Error(err))
	}
	if err := h.publisher.PublishOrderCompleted(ctx, placed); err != nil {
		h.log.Warn("failed to publish order event", zap.Int64("order_id", placed.ID), zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Order #%d placed successfully!", placed.ID),
		"order":   placed,
	})
}

// describe maps an engine error to status, machine code and the message
// shown to the buyer.
func describe(err error) (int, string, string) {
	var validationErr *ValidationError
	var stockErr *InsufficientStockError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, "validation", validationErr.Err.Error()
	case errors.Is(err, ErrProductUnavailable):
		return fiber.StatusConflict, "unavailable", ErrProductUnavailable.Error()
	case errors.As(err, &stockErr):
		return fiber.StatusConflict, "insufficient_stock", stockErr.Error()
	default:
		return fiber.StatusUnprocessableEntity, "checkout_failed", ErrCheckoutFailed.Error()
	}
}
