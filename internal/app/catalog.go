package app

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"food_store/internal/models"
	"food_store/internal/session"
)

// PageSize is the backend's pagination size.
const PageSize = 12

// ProductQuery filters the product listing. Zero values are left out of the request.
type ProductQuery struct {
	Page       int
	Search     string
	CategoryID int64
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.CategoryID > 0 {
		v.Set("categoria", strconv.FormatInt(q.CategoryID, 10))
	}
	return v
}

// totalPages is ceil(count / PageSize).
func totalPages(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}

// isJSONArray reports whether body is a bare JSON array rather than a paginated envelope.
func isJSONArray(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) > 0 && body[0] == '['
}

func decodeProductPage(resp *session.Response) (*models.ProductPage, error) {
	var page models.ProductPage
	if isJSONArray(resp.Body) {
		if err := resp.Decode(&page.Results); err != nil {
			return nil, err
		}
		page.Count = len(page.Results)
	} else if err := resp.Decode(&page); err != nil {
		return nil, err
	}

	if page.Results == nil {
		page.Results = []models.Product{}
	}
	page.TotalPages = totalPages(page.Count)
	return &page, nil
}

// ListProducts returns one page of available products.
func (app *App) ListProducts(ctx context.Context, q ProductQuery) (*models.ProductPage, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.ProductsPath, nil, session.WithQuery(q.values()))
	if err != nil {
		return nil, err
	}
	return decodeProductPage(resp)
}

// GetProduct returns a single product.
func (app *App) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.ProductPath(id), nil)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories returns every category.
func (app *App) ListCategories(ctx context.Context) ([]models.Category, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.CategoriesPath, nil)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if isJSONArray(resp.Body) {
		if err := resp.Decode(&categories); err != nil {
			return nil, err
		}
	} else {
		var page models.CategoryPage
		if err := resp.Decode(&page); err != nil {
			return nil, err
		}
		categories = page.Results
	}

	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategory returns a single category.
func (app *App) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	resp, err := app.client.Do(ctx, http.MethodGet, session.CategoryPath(id), nil)
	if err != nil {
		return nil, err
	}

	var c models.Category
	if err := resp.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// RateProduct sends a 1..5 star rating. It needs a signed-in user.
func (app *App) RateProduct(ctx context.Context, id int64, rating float64) (*models.RateResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.RateProductPath(id), models.RateRequest{Rating: rating})
	if err != nil {
		return nil, err
	}

	var out models.RateResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
