package handlers

import (
	"errors"

	"pharmacy/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler exposes the read-only product catalog.
type CatalogHandler struct {
	catalog repositories.CatalogRepository
}

func NewCatalogHandler(catalog repositories.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/catalog", h.HandleGetProducts)
	router.Get("/catalog/:id", h.HandleGetProduct)
}

func (h *CatalogHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.catalog.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}
	return c.JSON(product)
}
