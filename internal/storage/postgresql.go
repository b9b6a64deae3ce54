package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"food_store/internal/models"
	"food_store/internal/pkg/logger"
)

const (
	createSessionTableQuery = `CREATE TABLE IF NOT EXISTS storefront_session (
	id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	access_token TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	is_staff BOOLEAN NOT NULL DEFAULT FALSE,
	is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	loadSessionQuery  = `SELECT access_token, refresh_token, username, is_staff, is_superuser FROM storefront_session WHERE id = 1;`
	saveSessionQuery  = `INSERT INTO storefront_session (id, access_token, refresh_token, username, is_staff, is_superuser) VALUES (1, $1, $2, $3, $4, $5) ON CONFLICT (id) DO UPDATE SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token, username = EXCLUDED.username, is_staff = EXCLUDED.is_staff, is_superuser = EXCLUDED.is_superuser, updated_at = NOW();`
	clearSessionQuery = `DELETE FROM storefront_session WHERE id = 1;`
)

// PostgreSQL implements the Storage interface using a single-row PostgreSQL table.
type PostgreSQL struct {
	db  *sql.DB        // Connection to the database.
	log *logger.Logger // Logger for recording events and errors.
}

// NewPostgreSQL creates a new PostgreSQL instance with the provided connection string and logger.
// It opens the connection, pings the database and creates the session table if needed.
func NewPostgreSQL(configDBString string, l *logger.Logger) (*PostgreSQL, error) {
	db, err := sql.Open("pgx", configDBString)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Sugar().Errorf("Database ping failed: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	postgresql := newPostgreSQLFromDB(db, l)
	if err := postgresql.migrate(ctx); err != nil {
		return postgresql, err
	}
	return postgresql, nil
}

func newPostgreSQLFromDB(db *sql.DB, l *logger.Logger) *PostgreSQL {
	return &PostgreSQL{db: db, log: l}
}

func (postgresql *PostgreSQL) migrate(ctx context.Context) error {
	if _, err := postgresql.db.ExecContext(ctx, createSessionTableQuery); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createSessionTableQuery: %s", err)
		return err
	}
	return nil
}

// Close closes the database connection if it is open.
func (postgresql *PostgreSQL) Close() {
	if postgresql.db != nil {
		postgresql.db.Close()
	}
}

// Load reads the session row. No row, or no table yet, is an empty session.
func (postgresql *PostgreSQL) Load(ctx context.Context) (models.Session, error) {
	var session models.Session

	err := postgresql.db.QueryRowContext(ctx, loadSessionQuery).Scan(
		&session.AccessToken,
		&session.RefreshToken,
		&session.Username,
		&session.IsStaff,
		&session.IsSuperuser,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return models.Session{}, nil
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query loadSessionQuery: %s", err)
		return models.Session{}, err
	}
	return session, nil
}

// Save upserts the session row.
func (postgresql *PostgreSQL) Save(ctx context.Context, session models.Session) error {
	_, err := postgresql.db.ExecContext(ctx, saveSessionQuery,
		session.AccessToken,
		session.RefreshToken,
		session.Username,
		session.IsStaff,
		session.IsSuperuser,
	)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query saveSessionQuery: %s", err)
		return err
	}
	return nil
}

// Clear deletes the session row.
func (postgresql *PostgreSQL) Clear(ctx context.Context) error {
	_, err := postgresql.db.ExecContext(ctx, clearSessionQuery)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query clearSessionQuery: %s", err)
		return err
	}
	return nil
}
