// Package backendtest runs an in-process imitation of the storefront REST backend
// for tests. It issues real signed JWTs, paginates like the backend (12 per page),
// asks for an emailed code on login when two-factor is on, and answers with the
// backend's own error strings.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"food_store/internal/models"
	"food_store/internal/pkg/auth"
)

// DebugCode is the verification code handed out on every two-factor login.
const DebugCode = "123456"

// PageSize matches the backend pagination.
const PageSize = 12

type user struct {
	id          int64
	username    string
	password    string
	email       string
	isStaff     bool
	isSuperuser bool
}

// Backend is a fake REST backend bound to an httptest server.
type Backend struct {
	server *httptest.Server
	secret []byte

	mu           sync.Mutex
	twoFactor    bool
	users        map[string]*user
	access       map[string]string
	refresh      map[string]string
	challenges   map[string]string
	products     map[int64]models.Product
	categories   map[int64]models.Category
	nextID       int64
	refreshCalls int
	refreshDelay time.Duration
}

// New starts a backend that is shut down when t finishes.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		secret:     []byte("backendtest-secret"),
		users:      make(map[string]*user),
		access:     make(map[string]string),
		refresh:    make(map[string]string),
		challenges: make(map[string]string),
		products:   make(map[int64]models.Product),
		categories: make(map[int64]models.Category),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL of the backend.
func (b *Backend) URL() string { return b.server.URL }

// Close stops the backend; later requests fail at the transport level.
func (b *Backend) Close() { b.server.Close() }

// SetTwoFactor turns the emailed-code step of the customer login on or off.
func (b *Backend) SetTwoFactor(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.twoFactor = on
}

// SetRefreshDelay slows down the refresh endpoint.
func (b *Backend) SetRefreshDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

// AddUser registers an account.
func (b *Backend) AddUser(username, password, email string, staff bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.users[username] = &user{id: b.nextID, username: username, password: password, email: email, isStaff: staff}
}

// AddCategory stores a category and returns it with its id.
func (b *Backend) AddCategory(name string) models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := models.Category{ID: b.nextID, Name: name, Active: true}
	b.categories[c.ID] = c
	return c
}

// AddProduct stores a product and returns it with its id.
func (b *Backend) AddProduct(p models.Product) models.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p.ID = b.nextID
	if c, ok := b.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	b.products[p.ID] = p
	return p
}

// Product returns the stored product.
func (b *Backend) Product(id int64) (models.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	return p, ok
}

// ExpireAccessTokens invalidates every issued access token.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]string)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh = make(map[string]string)
}

// RefreshCalls is the number of calls made to the refresh endpoint.
func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/usuarios/register/", b.register)
	r.Post("/api/usuarios/login/", b.login)
	r.Post("/api/usuarios/admin-login/", b.adminLogin)
	r.Post("/api/usuarios/verify-code/", b.verifyCode)
	r.Post("/api/token/refresh/", b.refreshToken)

	r.Get("/api/productos/", b.listProducts)
	r.Get("/api/productos/{id}/", b.getProduct)
	r.With(b.requireUser).Post("/api/productos/{id}/calificar/", b.rateProduct)
	r.Get("/api/categorias/", b.listCategories)
	r.Get("/api/categorias/{id}/", b.getCategory)

	r.Route("/api/admin/productos", func(r chi.Router) {
		r.Use(b.requireUser, b.requireStaff)
		r.Get("/", b.adminListProducts)
		r.Post("/", b.adminCreateProduct)
		r.Get("/{id}/", b.getProduct)
		r.Put("/{id}/", b.adminUpdateProduct)
		r.Patch("/{id}/", b.adminUpdateProduct)
		r.Delete("/{id}/", b.adminDeleteProduct)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (b *Backend) sign(u *user, tokenType string, ttl time.Duration) string {
	claims := auth.Claims{
		UserID:    u.id,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return token
}

// issueLocked mints a token pair for u. Callers hold b.mu.
func (b *Backend) issueLocked(u *user) models.TokenResponse {
	access := b.sign(u, "access", 5*time.Minute)
	refresh := b.sign(u, "refresh", 24*time.Hour)
	b.access[access] = u.username
	b.refresh[refresh] = u.username

	role := "cliente"
	if u.isStaff {
		role = "admin"
	}
	return models.TokenResponse{
		Access:      access,
		Refresh:     refresh,
		Username:    u.username,
		Role:        role,
		UserID:      u.id,
		IsStaff:     u.isStaff,
		IsSuperuser: u.isSuperuser,
	}
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(r, &req) || req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Usuario, contraseña y email son requeridos")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[req.Username]; ok {
		writeError(w, http.StatusBadRequest, "Usuario ya existe")
		return
	}
	for _, u := range b.users {
		if u.email == req.Email {
			writeError(w, http.StatusBadRequest, "Email ya registrado")
			return
		}
	}

	b.nextID++
	u := &user{id: b.nextID, username: req.Username, password: req.Password, email: req.Email}
	b.users[u.username] = u

	resp := b.issueLocked(u)
	resp.Message = "Usuario creado exitosamente"
	writeJSON(w, http.StatusCreated, resp)
}

func (b *Backend) authenticateLocked(w http.ResponseWriter, r *http.Request) *user {
	var req models.AuthRequest
	if !decode(r, &req) || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Usuario y contraseña son requeridos")
		return nil
	}
	u, ok := b.users[req.Username]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Credenciales incorrectas")
		return nil
	}
	return u
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.authenticateLocked(w, r)
	if u == nil {
		return
	}

	if !b.twoFactor {
		writeJSON(w, http.StatusOK, b.issueLocked(u))
		return
	}

	sessionID := uuid.NewString()
	b.challenges[sessionID] = u.username
	writeJSON(w, http.StatusOK, models.LoginResponse{
		TokenResponse:     models.TokenResponse{Message: "Código de verificación enviado. Revisa la consola del servidor."},
		RequiresTwoFactor: true,
		SessionID:         sessionID,
		Email:             u.email,
		DebugCode:         DebugCode,
	})
}

func (b *Backend) adminLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.authenticateLocked(w, r)
	if u == nil {
		return
	}
	writeJSON(w, http.StatusOK, b.issueLocked(u))
}

func (b *Backend) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if !decode(r, &req) || req.SessionID == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "session_id y código son requeridos")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	username, ok := b.challenges[req.SessionID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Sesión inválida o expirada")
		return
	}
	if username == "" {
		writeError(w, http.StatusBadRequest, "Código expirado o ya usado")
		return
	}
	if req.Code != DebugCode {
		writeError(w, http.StatusUnauthorized, "Código incorrecto")
		return
	}

	b.challenges[req.SessionID] = ""
	resp := b.issueLocked(b.users[username])
	resp.Message = "Verificación exitosa"
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	delay := b.refreshDelay
	b.mu.Unlock()

	time.Sleep(delay)

	var req models.RefreshRequest
	if !decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"Este campo es requerido."}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.refresh[req.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	u := b.users[username]
	access := b.sign(u, "access", 5*time.Minute)
	b.access[access] = username
	writeJSON(w, http.StatusOK, models.RefreshResponse{Access: access})
}

func (b *Backend) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		username, ok := b.access[token]
		b.mu.Unlock()
		if token == "" || !ok {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		r.Header.Set("X-Test-User", username)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		u := b.users[r.Header.Get("X-Test-User")]
		b.mu.Unlock()
		if u == nil || !(u.isStaff || u.isSuperuser) {
			writeDetail(w, http.StatusForbidden, "Usted no tiene permiso para realizar esta acción.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) sortedProductsLocked(onlyAvailable bool) []models.Product {
	out := make([]models.Product, 0, len(b.products))
	for _, p := range b.products {
		if onlyAvailable && !p.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) paginate(w http.ResponseWriter, r *http.Request, all []models.Product) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeDetail(w, http.StatusNotFound, "Página inválida.")
			return
		}
		page = n
	}

	start := (page - 1) * PageSize
	if start > len(all) || (start == len(all) && page > 1) {
		writeDetail(w, http.StatusNotFound, "Página inválida.")
		return
	}
	end := start + PageSize
	if end > len(all) {
		end = len(all)
	}

	resp := struct {
		Count    int              `json:"count"`
		Next     *string          `json:"next"`
		Previous *string          `json:"previous"`
		Results  []models.Product `json:"results"`
	}{Count: len(all), Results: all[start:end]}

	if end < len(all) {
		next := fmt.Sprintf("%s%s?page=%d", b.server.URL, r.URL.Path, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := fmt.Sprintf("%s%s?page=%d", b.server.URL, r.URL.Path, page-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	category, _ := strconv.ParseInt(q.Get("categoria"), 10, 64)

	b.mu.Lock()
	all := b.sortedProductsLocked(true)
	b.mu.Unlock()

	filtered := all[:0]
	for _, p := range all {
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		if category != 0 && p.CategoryID != category {
			continue
		}
		filtered = append(filtered, p)
	}
	b.paginate(w, r, filtered)
}

func (b *Backend) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return 0, false
	}
	return id, true
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := b.productID(w, r)
	if !ok {
		return
	}
	p, ok := b.Product(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) rateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := b.productID(w, r)
	if !ok {
		return
	}

	var req models.RateRequest
	if !decode(r, &req) || req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Calificación debe estar entre 1 y 5")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return
	}
	p.Rating = req.Rating
	b.products[id] = p
	writeJSON(w, http.StatusOK, models.RateResponse{
		Message: fmt.Sprintf("Producto calificado con %g estrellas", req.Rating),
		Rating:  p.Rating,
	})
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Category, 0, len(b.categories))
	for _, c := range b.categories {
		c.ProductsCount = 0
		for _, p := range b.products {
			if p.CategoryID == c.ID {
				c.ProductsCount++
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, models.CategoryPage{Count: len(out), Results: out})
}

func (b *Backend) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := b.productID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	c, ok := b.categories[id]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) adminListProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	all := b.sortedProductsLocked(false)
	b.mu.Unlock()
	b.paginate(w, r, all)
}

func validateInput(in models.ProductInput) map[string][]string {
	errs := make(map[string][]string)
	if in.Name == "" {
		errs["nombre"] = []string{"Este campo no puede estar en blanco."}
	}
	if in.Price <= 0 {
		errs["precio"] = []string{"El precio debe ser mayor a 0"}
	}
	if in.Stock < 0 {
		errs["stock"] = []string{"El stock no puede ser negativo"}
	}
	return errs
}

func (b *Backend) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decode(r, &in) {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}
	if errs := validateInput(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	p := b.AddProduct(models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		Available:   in.Available,
		Stock:       in.Stock,
	})
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := b.productID(w, r)
	if !ok {
		return
	}
	var in models.ProductInput
	if !decode(r, &in) {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}
	if errs := validateInput(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return
	}
	p.Name, p.Description, p.Price = in.Name, in.Description, in.Price
	p.CategoryID, p.ImageURL, p.Available, p.Stock = in.CategoryID, in.ImageURL, in.Available, in.Stock
	if c, ok := b.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	b.products[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := b.productID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		writeDetail(w, http.StatusNotFound, "No encontrado.")
		return
	}
	delete(b.products, id)
	w.WriteHeader(http.StatusNoContent)
}
