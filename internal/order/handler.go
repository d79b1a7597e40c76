package order

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes committed orders and the buyer directory.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/orders/:id<int>", h.getOrder)
	app.Get("/api/v1/buyers", h.getBuyers)
	app.Get("/api/v1/buyers/:email", h.getBuyerOrders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	o, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(o)
}

func (h *Handler) getBuyers(c *fiber.Ctx) error {
	buyers, err := h.service.ListBuyers(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(buyers)
}

func (h *Handler) getBuyerOrders(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid email"})
	}

	orders, err := h.service.ListByBuyerEmail(c.UserContext(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{
		"buyerEmail": email,
		"orders":     orders,
	})
}
