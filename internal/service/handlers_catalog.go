package service

import (
	"context"
	"net/http"
	"strconv"

	"food_store/internal/app"
	"food_store/internal/models"
)

// listProductsHandler lists available products. It accepts page, search and categoria.
func (handlers *handlers) listProductsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	q := req.URL.Query()
	query := app.ProductQuery{Search: q.Get("search")}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeErrorResponse(res, "invalid page", http.StatusBadRequest)
			return
		}
		query.Page = page
	}
	if v := q.Get("categoria"); v != "" {
		category, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeErrorResponse(res, "invalid categoria", http.StatusBadRequest)
			return
		}
		query.CategoryID = category
	}

	page, err := handlers.app.ListProducts(ctx, query)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, page)
}

func (handlers *handlers) getProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := handlers.app.GetProduct(ctx, id)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, product)
}

// rateProductHandler rates a product on behalf of the signed-in user.
func (handlers *handlers) rateProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	var in models.RateRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := handlers.app.RateProduct(ctx, id, in.Rating)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, out)
}

func (handlers *handlers) listCategoriesHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	categories, err := handlers.app.ListCategories(ctx)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, categories)
}

func (handlers *handlers) getCategoryHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := handlers.app.GetCategory(ctx, id)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, category)
}
