package app

import (
	"errors"
	"net/http"
	"strings"

	"food_store/internal/session"
)

// Notice is the message shown to the user after a failed action.
type Notice struct {
	Text string `json:"text"`
	// RestartLogin asks the UI to go back to the username and password step.
	RestartLogin bool `json:"restart_login,omitempty"`
}

// Fallback texts shared by several notices.
const (
	NoticeUnexpected = "Ocurrió un error inesperado"
	NoticePayment    = "Funcionalidad de pago próximamente!"
)

// reason is the user-facing part of an error built as "<sentinel>: <reason>".
func reason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// localNotice covers the errors raised before any backend call.
func localNotice(err error) (Notice, bool) {
	switch {
	case errors.Is(err, ErrMissingUsernameOrPassword):
		return Notice{Text: "Usuario y contraseña son requeridos"}, true
	case errors.Is(err, ErrMissingEmail):
		return Notice{Text: "El email es requerido"}, true
	case errors.Is(err, ErrPasswordMismatch):
		return Notice{Text: "Las contraseñas no coinciden"}, true
	case errors.Is(err, ErrInvalidCodeFormat):
		return Notice{Text: "Por favor ingresa los 6 dígitos"}, true
	case errors.Is(err, ErrMissingSessionID):
		return Notice{Text: "Sesión inválida. Inicia sesión nuevamente.", RestartLogin: true}, true
	case errors.Is(err, ErrNotAdmin):
		return Notice{Text: "Acceso denegado. Solo administradores."}, true
	case errors.Is(err, ErrInvalidRating):
		return Notice{Text: "Calificación debe estar entre 1 y 5"}, true
	case errors.Is(err, ErrInvalidQuantity):
		return Notice{Text: "La cantidad debe ser al menos 1"}, true
	case errors.Is(err, ErrInvalidProduct), errors.Is(err, ErrInvalidFeedback):
		return Notice{Text: reason(err)}, true
	case errors.Is(err, ErrPaymentUnavailable):
		return Notice{Text: NoticePayment}, true
	}
	return Notice{}, false
}

// IsValidationError reports whether err was raised locally because of bad input.
func IsValidationError(err error) bool {
	if errors.Is(err, ErrNotAdmin) || errors.Is(err, ErrPaymentUnavailable) {
		return false
	}
	_, ok := localNotice(err)
	return ok
}

// GenericNotice maps errors of actions without a page-specific message.
func GenericNotice(err error) Notice {
	if n, ok := localNotice(err); ok {
		return n
	}
	if isUnreachable(err) {
		return Notice{Text: "Error de conexión. Verifica tu internet"}
	}
	return Notice{Text: detailOr(err, NoticeUnexpected)}
}

func isUnreachable(err error) bool {
	return errors.Is(err, session.ErrUnreachable)
}

func detailOr(err error, fallback string) string {
	if msg := session.Message(err); msg != "" {
		return msg
	}
	return fallback
}

// LoginNotice maps a Login error to the text of the customer sign-in page.
func LoginNotice(err error) Notice {
	if n, ok := localNotice(err); ok {
		return n
	}

	detail := session.Message(err)
	status, _ := session.StatusCode(err)

	switch {
	case strings.Contains(detail, "Credenciales incorrectas") || status == http.StatusUnauthorized:
		return Notice{Text: "Usuario o contraseña incorrectos"}
	case isUnreachable(err):
		return Notice{Text: "Error de conexión. Verifica que el servidor esté corriendo."}
	default:
		return Notice{Text: detailOr(err, NoticeUnexpected)}
	}
}

// VerifyNotice maps a VerifyCode error. Expired codes and unknown sessions send the
// user back to the first login step.
func VerifyNotice(err error) Notice {
	if n, ok := localNotice(err); ok {
		return n
	}

	detail := session.Message(err)
	switch {
	case strings.Contains(detail, "Código incorrecto"):
		return Notice{Text: "Código incorrecto. Inténtalo de nuevo."}
	case strings.Contains(detail, "expirado"):
		return Notice{Text: "El código ha expirado. Inicia sesión nuevamente.", RestartLogin: true}
	case strings.Contains(detail, "Sesión inválida"):
		return Notice{Text: "Sesión inválida. Inicia sesión nuevamente.", RestartLogin: true}
	default:
		return Notice{Text: detailOr(err, NoticeUnexpected)}
	}
}

// RegisterNotice maps a Register error to the text of the sign-up page.
func RegisterNotice(err error) Notice {
	if n, ok := localNotice(err); ok {
		return n
	}

	detail := strings.ToLower(session.Message(err))
	status, _ := session.StatusCode(err)

	switch {
	case strings.Contains(detail, "already exists") || strings.Contains(detail, "ya existe") || status == http.StatusConflict:
		return Notice{Text: "El usuario ya existe. Elige otro nombre"}
	case strings.Contains(detail, "email"):
		return Notice{Text: "Email ya registrado"}
	case strings.Contains(detail, "password") && strings.Contains(detail, "débil"):
		return Notice{Text: "La contraseña no cumple los requisitos de seguridad"}
	case isUnreachable(err):
		return Notice{Text: "Error de conexión. Verifica tu internet"}
	default:
		return Notice{Text: detailOr(err, NoticeUnexpected)}
	}
}

// AdminLoginNotice maps an AdminLogin error to the text of the admin sign-in page.
func AdminLoginNotice(err error) Notice {
	if n, ok := localNotice(err); ok {
		return n
	}
	return Notice{Text: detailOr(err, "Credenciales inválidas o error en el servidor.")}
}
