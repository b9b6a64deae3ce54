package app

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"food_store/internal/models"
	"food_store/internal/session"
)

func backendErr(status int, msg string) error {
	return &session.HTTPError{StatusCode: status, Message: msg}
}

var errNetwork = fmt.Errorf("%w: dial tcp: connection refused", session.ErrUnreachable)

func TestLoginNotice(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "bad credentials", err: backendErr(http.StatusUnauthorized, "Credenciales incorrectas"), want: "Usuario o contraseña incorrectos"},
		{name: "any 401", err: backendErr(http.StatusUnauthorized, ""), want: "Usuario o contraseña incorrectos"},
		{name: "network", err: errNetwork, want: "Error de conexión. Verifica que el servidor esté corriendo."},
		{name: "backend detail", err: backendErr(http.StatusBadRequest, "Usuario y contraseña son requeridos"), want: "Usuario y contraseña son requeridos"},
		{name: "unknown", err: errors.New("boom"), want: NoticeUnexpected},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LoginNotice(tc.err).Text)
		})
	}
}

func TestVerifyNotice(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Notice
	}{
		{name: "format", err: ErrInvalidCodeFormat, want: Notice{Text: "Por favor ingresa los 6 dígitos"}},
		{name: "wrong code", err: backendErr(http.StatusUnauthorized, "Código incorrecto"), want: Notice{Text: "Código incorrecto. Inténtalo de nuevo."}},
		{name: "expired", err: backendErr(http.StatusBadRequest, "Código expirado o ya usado"), want: Notice{Text: "El código ha expirado. Inicia sesión nuevamente.", RestartLogin: true}},
		{name: "invalid session", err: backendErr(http.StatusBadRequest, "Sesión inválida o expirada"), want: Notice{Text: "Sesión inválida. Inicia sesión nuevamente.", RestartLogin: true}},
		{name: "other", err: backendErr(http.StatusInternalServerError, ""), want: Notice{Text: NoticeUnexpected}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VerifyNotice(tc.err))
		})
	}
}

func TestRegisterNotice(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "mismatch", err: ErrPasswordMismatch, want: "Las contraseñas no coinciden"},
		{name: "user exists", err: backendErr(http.StatusBadRequest, "Usuario ya existe"), want: "El usuario ya existe. Elige otro nombre"},
		{name: "already exists", err: backendErr(http.StatusBadRequest, "A user with that username already exists."), want: "El usuario ya existe. Elige otro nombre"},
		{name: "conflict", err: backendErr(http.StatusConflict, ""), want: "El usuario ya existe. Elige otro nombre"},
		{name: "email", err: backendErr(http.StatusBadRequest, "Email ya registrado"), want: "Email ya registrado"},
		{name: "weak password", err: backendErr(http.StatusBadRequest, "Password demasiado débil"), want: "La contraseña no cumple los requisitos de seguridad"},
		{name: "network", err: errNetwork, want: "Error de conexión. Verifica tu internet"},
		{name: "other", err: backendErr(http.StatusInternalServerError, "Error interno del servidor: boom"), want: "Error interno del servidor: boom"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RegisterNotice(tc.err).Text)
		})
	}
}

func TestAdminLoginNotice(t *testing.T) {
	assert.Equal(t, "Acceso denegado. Solo administradores.", AdminLoginNotice(ErrNotAdmin).Text)
	assert.Equal(t, "Credenciales incorrectas", AdminLoginNotice(backendErr(http.StatusUnauthorized, "Credenciales incorrectas")).Text)
	assert.Equal(t, "Credenciales inválidas o error en el servidor.", AdminLoginNotice(errNetwork).Text)
}

func TestGenericNotice(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "rating", err: ErrInvalidRating, want: "Calificación debe estar entre 1 y 5"},
		{name: "product reason", err: ValidateProductInput(models.ProductInput{Name: "x", CategoryID: 1}), want: "el precio debe ser mayor a 0"},
		{name: "payment", err: ErrPaymentUnavailable, want: NoticePayment},
		{name: "network", err: errNetwork, want: "Error de conexión. Verifica tu internet"},
		{name: "backend", err: backendErr(http.StatusNotFound, "No encontrado."), want: "No encontrado."},
		{name: "unknown", err: errors.New("boom"), want: NoticeUnexpected},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenericNotice(tc.err).Text)
		})
	}
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrInvalidQuantity))
	assert.True(t, IsValidationError(ErrPasswordMismatch))
	assert.False(t, IsValidationError(ErrNotAdmin))
	assert.False(t, IsValidationError(ErrPaymentUnavailable))
	assert.False(t, IsValidationError(backendErr(http.StatusBadRequest, "x")))
}
