package service

import (
	"context"
	"net/http"

	"food_store/internal/app"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (handlers *handlers) cartHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Cart().Snapshot())
}

func (handlers *handlers) clearCartHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Cart().Clear())
}

// addCartItemHandler adds a catalog product to the cart. quantity defaults to 1.
func (handlers *handlers) addCartItemHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in addItemRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}
	if in.ProductID <= 0 {
		writeErrorResponse(res, "missing product_id", http.StatusBadRequest)
		return
	}

	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	state, err := handlers.app.AddToCart(ctx, in.ProductID, qty)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, state)
}

// setCartQuantityHandler sets the quantity of a line item; zero or less removes it.
func (handlers *handlers) setCartQuantityHandler(res http.ResponseWriter, req *http.Request) {
	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	var in quantityRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(res, http.StatusOK, handlers.app.Cart().SetQuantity(id, in.Quantity))
}

func (handlers *handlers) removeCartItemHandler(res http.ResponseWriter, req *http.Request) {
	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(res, http.StatusOK, handlers.app.Cart().RemoveItem(id))
}

func (handlers *handlers) toggleCartHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Cart().Toggle())
}

func (handlers *handlers) openCartHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Cart().Open())
}

func (handlers *handlers) closeCartHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Cart().Close())
}

func (handlers *handlers) checkoutHandler(res http.ResponseWriter, req *http.Request) {
	if err := handlers.app.Checkout(req.Context()); err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, handlers.app.Cart().Snapshot())
}
