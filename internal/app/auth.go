package app

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"food_store/internal/models"
	"food_store/internal/session"
)

var codeRe = regexp.MustCompile(`^\d{6}$`)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginResult is the outcome of a customer login. When RequiresTwoFactor is set
// nothing is stored yet and the code sent to Email must be passed to VerifyCode.
type LoginResult struct {
	RequiresTwoFactor bool   `json:"requires_2fa"`
	SessionID         string `json:"session_id,omitempty"`
	Email             string `json:"email,omitempty"`
	DebugCode         string `json:"debug_code,omitempty"`
	Username          string `json:"username,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Register creates an account. When the backend answers with tokens the user is signed in.
func (app *App) Register(ctx context.Context, in RegisterInput) (*models.TokenResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingUsernameOrPassword
	}
	if in.Email == "" {
		return nil, ErrMissingEmail
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.RegisterPath, models.RegisterRequest{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
	})
	if err != nil {
		return nil, err
	}

	var tokens models.TokenResponse
	if err := resp.Decode(&tokens); err != nil {
		return nil, err
	}
	if tokens.Access != "" {
		app.signIn(tokens, profile{Username: tokens.Username})
	}
	app.log.Info("account registered", zap.String("username", in.Username))
	return &tokens, nil
}

// Login signs a customer in, or starts the two-factor step.
func (app *App) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingUsernameOrPassword
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.LoginPath, models.AuthRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	var out models.LoginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}

	if out.RequiresTwoFactor {
		return &LoginResult{
			RequiresTwoFactor: true,
			SessionID:         out.SessionID,
			Email:             out.Email,
			DebugCode:         out.DebugCode,
			Message:           out.Message,
		}, nil
	}

	app.signIn(out.TokenResponse, profile{Username: out.Username, IsStaff: out.IsStaff, IsSuperuser: out.IsSuperuser})
	app.log.Info("signed in", zap.String("username", out.Username))
	return &LoginResult{Username: out.Username, Message: "Inicio de sesión exitoso"}, nil
}

// VerifyCode completes a two-factor login with the emailed six-digit code.
func (app *App) VerifyCode(ctx context.Context, sessionID, code string) (*models.TokenResponse, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if !codeRe.MatchString(code) {
		return nil, ErrInvalidCodeFormat
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.VerifyCodePath, models.VerifyCodeRequest{SessionID: sessionID, Code: code})
	if err != nil {
		return nil, err
	}

	var tokens models.TokenResponse
	if err := resp.Decode(&tokens); err != nil {
		return nil, err
	}
	app.signIn(tokens, profile{Username: tokens.Username, IsStaff: tokens.IsStaff, IsSuperuser: tokens.IsSuperuser})
	app.log.Info("two-factor verification succeeded", zap.String("username", tokens.Username))
	return &tokens, nil
}

// AdminLogin signs into the admin console. Accounts without a staff or superuser
// flag are refused with ErrNotAdmin and leave no credentials behind.
func (app *App) AdminLogin(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	if username == "" || password == "" {
		return nil, ErrMissingUsernameOrPassword
	}

	resp, err := app.client.Do(ctx, http.MethodPost, session.AdminLoginPath, models.AuthRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	var tokens models.TokenResponse
	if err := resp.Decode(&tokens); err != nil {
		return nil, err
	}

	if !tokens.IsStaff && !tokens.IsSuperuser {
		app.client.ClearCredentials()
		app.log.Warn("admin login refused", zap.String("username", username))
		return nil, ErrNotAdmin
	}

	app.signIn(tokens, profile{Username: tokens.Username, IsStaff: tokens.IsStaff, IsSuperuser: tokens.IsSuperuser})
	app.log.Info("admin signed in", zap.String("username", tokens.Username))
	return &tokens, nil
}

// Logout drops the credentials and the stored session.
func (app *App) Logout(_ context.Context) {
	app.client.ClearCredentials()
}
