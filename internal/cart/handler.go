package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/wholesale-shop/internal/product"
	"github.com/wichananm65/wholesale-shop/internal/user"
)

// Handler exposes the session cart of the authenticated user.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/:productId<int>", h.addToCart)
	app.Put("/api/v1/cart/:productId<int>", h.updateCart)
	app.Delete("/api/v1/cart/:productId<int>", h.removeFromCart)
}

// quantity reads the posted quantity from a JSON or form body. Missing or
// malformed values count as 0.
func quantity(c *fiber.Ctx) int {
	var v any
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			return 0
		}
		v = payload["quantity"]
	} else {
		v = c.FormValue("quantity")
	}
	q, _ := ParsePositiveInt(v)
	return q
}

func productID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("productId"), 10, 64)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	snap, err := h.service.View(c.UserContext(), key)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(snap)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	p, count, err := h.service.Add(c.UserContext(), key, id, quantity(c))
	if err != nil {
		switch err {
		case product.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Product not found"})
		case ErrInvalidQuantity, ErrInsufficientStock:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
		default:
			return storeError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   p.Name + " added to cart!",
		"cartCount": count,
	})
}

func (h *Handler) updateCart(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	if _, err := h.service.Update(c.UserContext(), key, id, quantity(c)); err != nil {
		return storeError(c, err)
	}
	return h.getCart(c)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := productID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	if _, err := h.service.Remove(c.UserContext(), key, id); err != nil {
		return storeError(c, err)
	}
	return h.getCart(c)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	key, err := user.SessionKey(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(c.UserContext(), key); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func storeError(c *fiber.Ctx, err error) error {
	if err == ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
