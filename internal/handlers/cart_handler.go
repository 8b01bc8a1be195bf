package handlers

import (
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

type userQuery struct {
	UserID string `query:"user_id" validate:"required,uuid"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service  *services.CartService
	validate *RequestValidator
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, validate *RequestValidator) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleGetCart)
	router.Post("/cart/items", h.HandleAddItem)
	router.Delete("/cart/items/:item_id", h.HandleRemoveItem)
	router.Delete("/cart/clear", h.HandleClearCart)
}

func (h *CartHandler) userID(c *fiber.Ctx) (string, error) {
	var q userQuery
	if err := c.QueryParser(&q); err != nil {
		return "", &RequestError{Message: "Invalid query parameters"}
	}
	if err := h.validate.Struct(q); err != nil {
		return "", err
	}
	return q.UserID, nil
}

// HandleAddItem adds a product to the user's cart. Quantity bounds are checked by the service
// so the caller gets the domain message.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return &RequestError{Message: "Invalid request body"}
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	item, err := h.service.AddItem(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// HandleRemoveItem deletes one line from a cart. Any id that matches no line, well formed or
// not, is ItemNotFound.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	result, err := h.service.RemoveItem(c.UserContext(), c.Params("item_id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleClearCart removes every item from the user's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	result, err := h.service.ClearCart(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleGetCart returns the user's cart with computed totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	cart, err := h.service.GetCart(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}
