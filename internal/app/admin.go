package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"food_store/internal/models"
	"food_store/internal/session"
)

// ValidateProductInput applies the rules the backend enforces on product writes.
func ValidateProductInput(in models.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: el nombre es requerido", ErrInvalidProduct)
	case in.Price <= 0:
		return fmt.Errorf("%w: el precio debe ser mayor a 0", ErrInvalidProduct)
	case in.Stock < 0:
		return fmt.Errorf("%w: el stock no puede ser negativo", ErrInvalidProduct)
	case in.CategoryID <= 0:
		return fmt.Errorf("%w: la categoría es requerida", ErrInvalidProduct)
	}
	return nil
}

// ListAdminProducts returns one page of every product, unavailable ones included.
func (app *App) ListAdminProducts(ctx context.Context, page int) (*models.ProductPage, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.AdminProductsPath, nil,
		session.WithQuery(ProductQuery{Page: page}.values()))
	if err != nil {
		return nil, err
	}
	return decodeProductPage(resp)
}

// GetAdminProduct returns a product through the admin endpoint.
func (app *App) GetAdminProduct(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.AdminProductPath(id), nil)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateAdminProduct validates and creates a product.
func (app *App) CreateAdminProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := ValidateProductInput(in); err != nil {
		return nil, err
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.AdminProductsPath, in)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	app.log.Info("product created", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// UpdateAdminProduct validates and replaces a product.
func (app *App) UpdateAdminProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	if err := ValidateProductInput(in); err != nil {
		return nil, err
	}

	resp, err := app.client.Do(ctx, http.MethodPut, session.AdminProductPath(id), in)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	app.log.Info("product updated", zap.Int64("id", p.ID))
	return &p, nil
}

// DeleteAdminProduct removes a product.
func (app *App) DeleteAdminProduct(ctx context.Context, id int64) error {
	if _, err := app.client.Do(ctx, http.MethodDelete, session.AdminProductPath(id), nil); err != nil {
		return err
	}
	app.log.Info("product deleted", zap.Int64("id", id))
	return nil
}
