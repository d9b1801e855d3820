// Package api serves the storefront's JSON API under /api.
package api

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/identity"
	"github.com/labstack/echo/v4"
)

// CartHandler serves the cart endpoints.
type CartHandler struct {
	cart     domain.CartService
	identity *identity.Resolver
}

func NewCartHandler(cart domain.CartService, resolver *identity.Resolver) *CartHandler {
	return &CartHandler{cart: cart, identity: resolver}
}

type addItemRequest struct {
	CartID    string `json:"cartId" validate:"omitempty,cartid"`
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=1,lte=9999"`
	Variant   string `json:"variant" validate:"max=64"`

	// Color is the older name for Variant.
	Color string `json:"color" validate:"max=64"`
}

// Quantity tags mirror domain.MaxQuantity.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=9999"`
}

// Get handles GET /api/cart/:cartId
func (h *CartHandler) Get(c echo.Context) error {
	cartID := c.Param("cartId")
	if !domain.ValidCartID(cartID) {
		return domain.ErrInvalidCartID
	}
	return h.render(c, h.useCart(c, cartID))
}

// Current handles GET /api/cart for the cart carried by the request.
func (h *CartHandler) Current(c echo.Context) error {
	return h.render(c, h.useCart(c, ""))
}

func (h *CartHandler) render(c echo.Context, cartID string) error {
	view, err := h.cart.GetCart(c.Request().Context(), cartID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(view))
}

// Add handles POST /api/cart
func (h *CartHandler) Add(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.cart.add", "Request body must be valid JSON")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	variant := req.Variant
	if variant == "" {
		variant = req.Color
	}

	cartID := h.useCart(c, req.CartID)
	item, err := h.cart.AddItem(c.Request().Context(), cartID, req.ProductID, quantity, variant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newCartItemResponse(item))
}

// Update handles PUT /api/cart/:itemId. A quantity of zero or less removes
// the line.
func (h *CartHandler) Update(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.cart.update", "Request body must be valid JSON")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, removed, err := h.cart.SetQuantity(c.Request().Context(), itemID, *req.Quantity)
	if err != nil {
		return err
	}
	if removed {
		return c.JSON(http.StatusOK, removedResponse{Removed: true, ID: itemID})
	}
	return c.JSON(http.StatusOK, newCartItemResponse(item))
}

// Remove handles DELETE /api/cart/:itemId
func (h *CartHandler) Remove(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return err
	}
	removed, err := h.cart.RemoveItem(c.Request().Context(), itemID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrItemNotFound
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Clear handles DELETE /api/cart?cartId=... and always succeeds.
func (h *CartHandler) Clear(c echo.Context) error {
	cartID := c.QueryParam("cartId")
	if cartID == "" {
		cartID = h.useCart(c, "")
	}
	removed, err := h.cart.ClearCart(c.Request().Context(), cartID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Removed: &removed})
}

// useCart settles the cart id for this request: explicit when the client
// named one, otherwise resolved from headers or cookie. The id is offered to
// Persist and attached to the request context for logging.
func (h *CartHandler) useCart(c echo.Context, explicit string) string {
	id := identity.Identity{CartID: explicit, Source: identity.SourceRequest}
	if explicit == "" {
		id = h.identity.Resolve(c.Request())
	}
	h.identity.Persist(c.Response(), id)

	req := c.Request()
	c.SetRequest(req.WithContext(domain.NewContextWithCartID(req.Context(), id.CartID)))
	return id.CartID
}

func itemIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("api.cart.item", "itemId", "itemId must be a positive integer")
	}
	return id, nil
}
