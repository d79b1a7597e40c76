package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id<int>", h.getProduct)
}

// RegisterSellerRoutes mounts the seller dashboard behind guard, which is
// expected to reject non-seller accounts.
func (h *Handler) RegisterSellerRoutes(app fiber.Router, guard fiber.Handler) {
	app.Get("/api/v1/seller/dashboard", guard, h.sellerDashboard)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(p)
}

func (h *Handler) sellerDashboard(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	outOfStock := 0
	for _, p := range products {
		if p.Available() == 0 {
			outOfStock++
		}
	}
	return c.JSON(fiber.Map{
		"products":   products,
		"outOfStock": outOfStock,
	})
}
