package app

import (
	"context"

	"food_store/internal/cart"
)

// AddToCart looks the product up in the catalog and adds qty units of it to the cart.
func (app *App) AddToCart(ctx context.Context, productID int64, qty int) (cart.State, error) {
	if qty < 1 {
		return cart.State{}, ErrInvalidQuantity
	}

	p, err := app.GetProduct(ctx, productID)
	if err != nil {
		return cart.State{}, err
	}

	return app.cart.AddItem(*p, qty), nil
}

// Checkout would pay for the cart. Payments are not offered yet.
func (app *App) Checkout(_ context.Context) error {
	return ErrPaymentUnavailable
}
