package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_store/internal/app"
	"food_store/internal/backendtest"
	"food_store/internal/cart"
	"food_store/internal/models"
	"food_store/internal/pkg/logger"
	"food_store/internal/session"
	"food_store/internal/storage"
	"food_store/internal/storage/mocks"
)

func testRequest(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewBuffer(requestBody))
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

type expectedData struct {
	expectedContentType string
	expectedStatusCode  int
	expectedBody        string
}

func errorBody(text string) string {
	return fmt.Sprintf("{\"errors\":%q}\n", text)
}

func newTestServer(t *testing.T, db storage.Storage, opts ...session.Option) (*httptest.Server, *backendtest.Backend, *app.App) {
	t.Helper()
	backend := backendtest.New(t)
	appInstance := app.NewApp(backend.URL(), db, logger.Nop(), opts...)

	service := NewService(appInstance, "127.0.0.1:0", prometheus.NewRegistry(), logger.Nop())
	testServer := httptest.NewServer(service.NewRouter())
	t.Cleanup(testServer.Close)
	return testServer, backend, appInstance
}

func TestLoginHandler(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)

	testCases := []struct {
		name        string
		requestBody []byte
		expected    expectedData
	}{
		{
			name:        "Invalid JSON",
			requestBody: []byte("some body"),
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"invalid character 's' looking for beginning of value\"}\n",
			},
		},
		{
			name:        "Missing username",
			requestBody: []byte(`{"username": "", "password": "pass"}`),
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        errorBody("Usuario y contraseña son requeridos"),
			},
		},
		{
			name:        "Incorrect password",
			requestBody: []byte(`{"username": "ana", "password": "wrong"}`),
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusUnauthorized,
				expectedBody:        errorBody("Usuario o contraseña incorrectos"),
			},
		},
		{
			name:        "Successful login",
			requestBody: []byte(`{"username": "ana", "password": "Secret123!"}`),
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/session/login", tc.requestBody)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, tc.expected.expectedContentType, resp.Header.Get("Content-Type"))

			if tc.expected.expectedStatusCode != http.StatusOK {
				assert.Equal(t, tc.expected.expectedBody, body)
				return
			}

			var result app.LoginResult
			require.NoError(t, json.Unmarshal([]byte(body), &result))
			assert.False(t, result.RequiresTwoFactor)
			assert.Equal(t, "ana", result.Username)
		})
	}

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info app.SessionInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.True(t, info.LoggedIn)
	assert.Equal(t, "ana", info.Username)
	assert.NotContains(t, body, "access_token")
}

func TestSessionHandlers_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer, backend, _ := newTestServer(t, mockDB)
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)

	mockDB.EXPECT().Save(gomock.Any(), gomock.AssignableToTypeOf(models.Session{})).
		DoAndReturn(func(_ interface{}, s models.Session) error {
			assert.Equal(t, "ana", s.Username)
			assert.NotEmpty(t, s.AccessToken)
			assert.NotEmpty(t, s.RefreshToken)
			return nil
		}).Times(1)
	mockDB.EXPECT().Clear(gomock.Any()).Return(nil).Times(1)

	resp, _ := testRequest(t, testServer, http.MethodPost, "/api/session/login", []byte(`{"username":"ana","password":"Secret123!"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = testRequest(t, testServer, http.MethodPost, "/api/session/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := testRequest(t, testServer, http.MethodGet, "/api/session", nil)
	assert.Equal(t, "{\"logged_in\":false,\"is_staff\":false,\"is_superuser\":false,\"is_admin\":false}", body)
}

func TestVerifyHandler(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)
	backend.SetTwoFactor(true)

	resp, body := testRequest(t, testServer, http.MethodPost, "/api/session/login", []byte(`{"username":"ana","password":"Secret123!"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending app.LoginResult
	require.NoError(t, json.Unmarshal([]byte(body), &pending))
	require.True(t, pending.RequiresTwoFactor)
	require.NotEmpty(t, pending.SessionID)
	assert.Equal(t, "ana@example.com", pending.Email)

	verify := func(sessionID, code string) (*http.Response, string) {
		payload, err := json.Marshal(models.VerifyCodeRequest{SessionID: sessionID, Code: code})
		require.NoError(t, err)
		return testRequest(t, testServer, http.MethodPost, "/api/session/verify", payload)
	}

	testCases := []struct {
		name      string
		sessionID string
		code      string
		expected  expectedData
	}{
		{
			name:      "Short code",
			sessionID: pending.SessionID,
			code:      "123",
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       errorBody("Por favor ingresa los 6 dígitos"),
			},
		},
		{
			name:      "Missing session",
			sessionID: "",
			code:      backendtest.DebugCode,
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"Sesión inválida. Inicia sesión nuevamente.\",\"restart_login\":true}\n",
			},
		},
		{
			name:      "Wrong code",
			sessionID: pending.SessionID,
			code:      "000000",
			expected: expectedData{
				expectedStatusCode: http.StatusUnauthorized,
				expectedBody:       errorBody("Código incorrecto. Inténtalo de nuevo."),
			},
		},
		{
			name:      "Correct code",
			sessionID: pending.SessionID,
			code:      backendtest.DebugCode,
			expected: expectedData{
				expectedStatusCode: http.StatusOK,
			},
		},
		{
			name:      "Code already used",
			sessionID: pending.SessionID,
			code:      backendtest.DebugCode,
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"El código ha expirado. Inicia sesión nuevamente.\",\"restart_login\":true}\n",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := verify(tc.sessionID, tc.code)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			if tc.expected.expectedStatusCode != http.StatusOK {
				assert.Equal(t, tc.expected.expectedBody, body)
				return
			}

			var info app.SessionInfo
			require.NoError(t, json.Unmarshal([]byte(body), &info))
			assert.True(t, info.LoggedIn)
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)

	testCases := []struct {
		name        string
		requestBody string
		expected    expectedData
	}{
		{
			name:        "Passwords differ",
			requestBody: `{"username":"luis","email":"luis@example.com","password":"Secret123!","confirm_password":"other"}`,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedBody: errorBody("Las contraseñas no coinciden")},
		},
		{
			name:        "Taken username",
			requestBody: `{"username":"ana","email":"otra@example.com","password":"Secret123!","confirm_password":"Secret123!"}`,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedBody: errorBody("El usuario ya existe. Elige otro nombre")},
		},
		{
			name:        "Taken email",
			requestBody: `{"username":"luis","email":"ana@example.com","password":"Secret123!","confirm_password":"Secret123!"}`,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedBody: errorBody("Email ya registrado")},
		},
		{
			name:        "Created",
			requestBody: `{"username":"luis","email":"luis@example.com","password":"Secret123!","confirm_password":"Secret123!"}`,
			expected:    expectedData{expectedStatusCode: http.StatusCreated},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/session/register", []byte(tc.requestBody))
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			if tc.expected.expectedBody != "" {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestPasswordStrengthHandler(t *testing.T) {
	testServer, _, _ := newTestServer(t, storage.NewMemory())

	resp, body := testRequest(t, testServer, http.MethodPost, "/api/password-strength", []byte(`{"password":"Abcdef1!"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"label":"Fuerte"`)
	assert.Contains(t, body, `"level":3`)
}

func seedCatalog(b *backendtest.Backend) models.Category {
	drinks := b.AddCategory("Bebidas")
	b.AddProduct(models.Product{Name: "Limonada", Price: 5000, CategoryID: drinks.ID, Available: true})
	b.AddProduct(models.Product{Name: "Gaseosa", Price: 4000, CategoryID: drinks.ID, Available: true})
	return drinks
}

func TestCatalogHandlers(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	drinks := seedCatalog(backend)

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/products?search=limon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.ProductPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Limonada", page.Results[0].Name)
	assert.Equal(t, 1, page.TotalPages)

	resp, body = testRequest(t, testServer, http.MethodGet, fmt.Sprintf("/api/products?categoria=%d", drinks.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, 2, page.Count)

	resp, _ = testRequest(t, testServer, http.MethodGet, "/api/products?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = testRequest(t, testServer, http.MethodGet, fmt.Sprintf("/api/products/%d", page.Results[0].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var product models.Product
	require.NoError(t, json.Unmarshal([]byte(body), &product))
	assert.Equal(t, page.Results[0].Name, product.Name)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errorBody("No encontrado."), body)

	resp, _ = testRequest(t, testServer, http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.Category
	require.NoError(t, json.Unmarshal([]byte(body), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Bebidas", categories[0].Name)

	resp, _ = testRequest(t, testServer, http.MethodGet, fmt.Sprintf("/api/categories/%d", drinks.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateProductHandler(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	seedCatalog(backend)
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)

	_, body := testRequest(t, testServer, http.MethodGet, "/api/products", nil)
	var page models.ProductPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	ratePath := fmt.Sprintf("/api/products/%d/rate", page.Results[0].ID)

	resp, body := testRequest(t, testServer, http.MethodPost, ratePath, []byte(`{"calificacion": 9}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errorBody("Calificación debe estar entre 1 y 5"), body)

	resp, _ = testRequest(t, testServer, http.MethodPost, "/api/session/login", []byte(`{"username":"ana","password":"Secret123!"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = testRequest(t, testServer, http.MethodPost, ratePath, []byte(`{"calificacion": 4}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rated models.RateResponse
	require.NoError(t, json.Unmarshal([]byte(body), &rated))
	assert.Equal(t, "Producto calificado con 4 estrellas", rated.Message)

	stored, ok := backend.Product(page.Results[0].ID)
	require.True(t, ok)
	assert.Equal(t, 4.0, stored.Rating)
}

func TestCartHandlers(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	seedCatalog(backend)

	_, body := testRequest(t, testServer, http.MethodGet, "/api/products", nil)
	var page models.ProductPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Results, 2)
	first, second := page.Results[0], page.Results[1]

	decodeState := func(body string) cart.State {
		var state cart.State
		require.NoError(t, json.Unmarshal([]byte(body), &state))
		return state
	}

	resp, body := testRequest(t, testServer, http.MethodPost, "/api/cart/items", []byte(fmt.Sprintf(`{"product_id": %d}`, first.ID)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(body)
	assert.Equal(t, 1, state.Count)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/cart/items", []byte(fmt.Sprintf(`{"product_id": %d, "quantity": 2}`, second.ID)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(body)
	assert.Equal(t, 3, state.Count)
	assert.Equal(t, first.Price+2*second.Price, state.Total)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/cart/items", []byte(fmt.Sprintf(`{"product_id": %d, "quantity": 0}`, first.ID)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errorBody("La cantidad debe ser al menos 1"), body)

	resp, _ = testRequest(t, testServer, http.MethodPost, "/api/cart/items", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = testRequest(t, testServer, http.MethodPut, fmt.Sprintf("/api/cart/items/%d", first.ID), []byte(`{"quantity": 5}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, decodeState(body).Count)

	resp, body = testRequest(t, testServer, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", second.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(body)
	assert.Equal(t, 5, state.Count)
	assert.Equal(t, 5*first.Price, state.Total)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/cart/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeState(body).Open)

	_, body = testRequest(t, testServer, http.MethodPost, "/api/cart/close", nil)
	assert.False(t, decodeState(body).Open)
	_, body = testRequest(t, testServer, http.MethodPost, "/api/cart/open", nil)
	assert.True(t, decodeState(body).Open)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, errorBody(app.NoticePayment), body)

	resp, body = testRequest(t, testServer, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(body)
	assert.Empty(t, state.Items)
	assert.Equal(t, models.Price(0), state.Total)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/cart/items", []byte(`{"product_id": 9999}`))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errorBody("No encontrado."), body)
}

func TestAdminHandlers(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	drinks := seedCatalog(backend)
	backend.AddUser("ana", "Secret123!", "ana@example.com", false)
	backend.AddUser("root", "Admin123!", "root@example.com", true)

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errorBody("no active session"), body)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/session/admin-login", []byte(`{"username":"ana","password":"Secret123!"}`))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, errorBody("Acceso denegado. Solo administradores."), body)

	resp, _ = testRequest(t, testServer, http.MethodPost, "/api/session/login", []byte(`{"username":"ana","password":"Secret123!"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = testRequest(t, testServer, http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, errorBody("Acceso denegado. Solo administradores."), body)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/session/admin-login", []byte(`{"username":"root","password":"Admin123!"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info app.SessionInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.True(t, info.IsAdmin)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/admin/products", []byte(`{"nombre":"","precio":"100.00","categoria":1}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errorBody("el nombre es requerido"), body)

	create := fmt.Sprintf(`{"nombre":"Jugo de mango","descripcion":"Natural","precio":"6500.00","categoria":%d,"disponible":true,"stock":10}`, drinks.ID)
	resp, body = testRequest(t, testServer, http.MethodPost, "/api/admin/products", []byte(create))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, models.Price(650000), created.Price)
	productPath := fmt.Sprintf("/api/admin/products/%d", created.ID)

	update := strings.Replace(create, "Jugo de mango", "Jugo de mora", 1)
	resp, body = testRequest(t, testServer, http.MethodPut, productPath, []byte(update))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.Equal(t, "Jugo de mora", updated.Name)

	resp, _ = testRequest(t, testServer, http.MethodGet, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/admin/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.ProductPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, 3, page.Count)

	resp, _ = testRequest(t, testServer, http.MethodDelete, productPath, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, ok := backend.Product(created.ID)
	assert.False(t, ok)

	resp, _ = testRequest(t, testServer, http.MethodDelete, productPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatAndFeedbackHandlers(t *testing.T) {
	testServer, _, _ := newTestServer(t, storage.NewMemory())

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/chat", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []app.ChatMessage
	require.NoError(t, json.Unmarshal([]byte(body), &messages))
	assert.Len(t, messages, 2)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/chat", []byte(`{"text":"  hola  "}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "hola", messages[0].Text)
	assert.Equal(t, app.SenderUser, messages[0].Sender)
	assert.Equal(t, app.SenderBot, messages[1].Sender)

	_, body = testRequest(t, testServer, http.MethodPost, "/api/chat", []byte(`{"text":"   "}`))
	assert.Equal(t, "[]", body)

	_, body = testRequest(t, testServer, http.MethodGet, "/api/chat", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &messages))
	assert.Len(t, messages, 4)

	testCases := []struct {
		name        string
		requestBody string
		expected    expectedData
	}{
		{
			name:        "No rating",
			requestBody: `{"rating":0,"comment":"hola"}`,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedBody: errorBody("Por favor selecciona una calificación")},
		},
		{
			name:        "Accepted",
			requestBody: `{"rating":5,"comment":"Muy rico"}`,
			expected:    expectedData{expectedStatusCode: http.StatusOK},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/feedback", []byte(tc.requestBody))
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			if tc.expected.expectedBody != "" {
				assert.Equal(t, tc.expected.expectedBody, body)
				return
			}
			var receipt app.FeedbackReceipt
			require.NoError(t, json.Unmarshal([]byte(body), &receipt))
			assert.Equal(t, app.RatingLabel(5), receipt.Label)
		})
	}
}

func TestBackendUnreachable(t *testing.T) {
	testServer, backend, _ := newTestServer(t, storage.NewMemory())
	backend.Close()

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, errorBody("Error de conexión. Verifica tu internet"), body)

	resp, body = testRequest(t, testServer, http.MethodPost, "/api/session/login", []byte(`{"username":"ana","password":"x"}`))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, errorBody("Error de conexión. Verifica que el servidor esté corriendo."), body)
}

func TestLivezAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	backend := backendtest.New(t)
	appInstance := app.NewApp(backend.URL(), storage.NewMemory(), logger.Nop(), session.WithMetrics(session.NewMetrics(reg)))
	testServer := httptest.NewServer(NewService(appInstance, "127.0.0.1:0", reg, logger.Nop()).NewRouter())
	defer testServer.Close()

	resp, body := testRequest(t, testServer, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, body)

	testRequest(t, testServer, http.MethodGet, "/api/categories", nil)

	resp, body = testRequest(t, testServer, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `storefront_backend_requests_total{class="public",status="200"} 1`)
}
