// Package app provides the core application logic of the food storefront.
// It drives the backend through the session client for authentication, catalog browsing,
// product rating and the admin console, keeps the in-memory cart, and runs the demo chat
// and feedback form. The durable part of the session is mirrored into the storage layer
// so a restart resumes the signed-in user.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"food_store/internal/cart"
	"food_store/internal/models"
	"food_store/internal/pkg/auth"
	"food_store/internal/pkg/logger"
	"food_store/internal/session"
	"food_store/internal/storage"
)

// Predefined errors for requests rejected before reaching the backend.
var (
	// ErrMissingUsernameOrPassword indicates that either the username or password is not provided.
	ErrMissingUsernameOrPassword = errors.New("app: missing username or password")
	// ErrMissingEmail indicates a registration without an email address.
	ErrMissingEmail = errors.New("app: missing email")
	// ErrPasswordMismatch indicates that the password confirmation differs.
	ErrPasswordMismatch = errors.New("app: passwords do not match")
	// ErrInvalidCodeFormat indicates a verification code that is not six digits.
	ErrInvalidCodeFormat = errors.New("app: verification code must be 6 digits")
	// ErrMissingSessionID indicates a verification without the two-factor session id.
	ErrMissingSessionID = errors.New("app: missing two-factor session id")
	// ErrNotAdmin indicates a sign-in to the admin console by a regular account.
	ErrNotAdmin = errors.New("app: account is not an administrator")
	// ErrInvalidRating indicates a product rating outside 1..5.
	ErrInvalidRating = errors.New("app: rating must be between 1 and 5")
	// ErrInvalidQuantity indicates a cart quantity below 1.
	ErrInvalidQuantity = errors.New("app: quantity must be at least 1")
	// ErrInvalidProduct indicates admin product input the backend would reject.
	ErrInvalidProduct = errors.New("app: invalid product")
	// ErrInvalidFeedback indicates a feedback form that cannot be submitted.
	ErrInvalidFeedback = errors.New("app: invalid feedback")
	// ErrPaymentUnavailable is returned by checkout until payments exist.
	ErrPaymentUnavailable = errors.New("app: payment is not available yet")
)

const persistTimeout = 5 * time.Second

// profile is what the backend told us about the signed-in account.
type profile struct {
	Username    string
	IsStaff     bool
	IsSuperuser bool
}

// App encapsulates the application logic and dependencies required to process requests.
type App struct {
	client *session.Client
	cart   *cart.Store
	chat   *Chat
	db     storage.Storage // Durable session store.
	log    *logger.Logger

	mu      sync.RWMutex
	profile profile
}

// NewApp creates an App talking to the backend at baseURL. The session client is built
// with opts plus a listener that mirrors every credentials change into db.
func NewApp(baseURL string, db storage.Storage, l *logger.Logger, opts ...session.Option) *App {
	app := &App{
		cart: cart.New(),
		chat: NewChat(),
		db:   db,
		log:  l,
	}
	opts = append(opts, session.WithCredentialsListener(app.persistCredentials))
	app.client = session.New(baseURL, l.Named("session"), opts...)
	return app
}

// Cart returns the cart store.
func (app *App) Cart() *cart.Store { return app.cart }

// Chat returns the demo chat room.
func (app *App) Chat() *Chat { return app.chat }

// Client returns the backend session client.
func (app *App) Client() *session.Client { return app.client }

// Restore loads the durable session and installs it. An empty store leaves the app signed out.
func (app *App) Restore(ctx context.Context) error {
	stored, err := app.db.Load(ctx)
	if err != nil {
		return err
	}
	if stored.Credentials.Empty() {
		return nil
	}

	app.mu.Lock()
	app.profile = profile{Username: stored.Username, IsStaff: stored.IsStaff, IsSuperuser: stored.IsSuperuser}
	app.mu.Unlock()

	app.client.SetCredentials(stored.Credentials)
	app.log.Info("session restored", zap.String("username", stored.Username))
	return nil
}

// Session returns the current session: the live credentials and the account profile.
func (app *App) Session() models.Session {
	app.mu.RLock()
	p := app.profile
	app.mu.RUnlock()

	return models.Session{
		Credentials: app.client.Credentials(),
		Username:    p.Username,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
	}
}

// SessionInfo describes the signed-in state without exposing tokens.
type SessionInfo struct {
	LoggedIn        bool       `json:"logged_in"`
	Username        string     `json:"username,omitempty"`
	IsStaff         bool       `json:"is_staff"`
	IsSuperuser     bool       `json:"is_superuser"`
	IsAdmin         bool       `json:"is_admin"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`
}

// CurrentSession reports who is signed in and when the access token expires.
func (app *App) CurrentSession() SessionInfo {
	s := app.Session()
	info := SessionInfo{
		LoggedIn:    s.AccessToken != "",
		Username:    s.Username,
		IsStaff:     s.IsStaff,
		IsSuperuser: s.IsSuperuser,
		IsAdmin:     s.IsAdmin(),
	}
	if s.AccessToken != "" {
		if exp, err := auth.ExpiresAt(s.AccessToken); err == nil {
			info.AccessExpiresAt = &exp
		}
	}
	return info
}

// signIn records the account profile and installs the credential pair.
func (app *App) signIn(tokens models.TokenResponse, p profile) {
	app.mu.Lock()
	app.profile = p
	app.mu.Unlock()

	app.client.SetCredentials(models.Credentials{AccessToken: tokens.Access, RefreshToken: tokens.Refresh})
}

// persistCredentials keeps the durable store in sync with the session client.
// It runs after logins, logouts and every token refresh.
func (app *App) persistCredentials(creds models.Credentials) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if creds.Empty() {
		app.mu.Lock()
		app.profile = profile{}
		app.mu.Unlock()

		if err := app.db.Clear(ctx); err != nil {
			app.log.Error("failed to clear stored session", zap.Error(err))
		}
		return
	}

	app.mu.RLock()
	p := app.profile
	app.mu.RUnlock()

	err := app.db.Save(ctx, models.Session{
		Credentials: creds,
		Username:    p.Username,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
	})
	if err != nil {
		app.log.Error("failed to save session", zap.Error(err))
	}
}
