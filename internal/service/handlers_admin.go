package service

import (
	"context"
	"net/http"
	"strconv"

	"food_store/internal/app"
	"food_store/internal/models"
)

func (handlers *handlers) adminListProductsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	page := 0
	if v := req.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeErrorResponse(res, "invalid page", http.StatusBadRequest)
			return
		}
		page = n
	}

	products, err := handlers.app.ListAdminProducts(ctx, page)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, products)
}

func (handlers *handlers) adminGetProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := handlers.app.GetAdminProduct(ctx, id)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, product)
}

func (handlers *handlers) adminCreateProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in models.ProductInput
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := handlers.app.CreateAdminProduct(ctx, in)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusCreated, product)
}

func (handlers *handlers) adminUpdateProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	var in models.ProductInput
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := handlers.app.UpdateAdminProduct(ctx, id, in)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, product)
}

func (handlers *handlers) adminDeleteProductHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := idParam(req)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handlers.app.DeleteAdminProduct(ctx, id); err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}
