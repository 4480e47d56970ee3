package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	SaveDesign(ctx context.Context, d Design) (Design, error)
	ListDesigns(ctx context.Context, userID int) ([]DesignSummary, error)
	GetDesign(ctx context.Context, userID int, id uuid.UUID) (Design, error)
}

// Design is a stored sizing run. Input and Result hold the JSON documents
// exactly as the calculator produced them.
type Design struct {
	ID          uuid.UUID       `json:"id"`
	UserID      int             `json:"-"`
	Name        string          `json:"name"`
	Topology    string          `json:"topology"`
	TotalMassKG float64         `json:"total_mass_kg"`
	Input       json.RawMessage `json:"input"`
	Result      json.RawMessage `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
}

type DesignSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Topology    string    `json:"topology"`
	TotalMassKG float64   `json:"total_mass_kg"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d Design) Summary() DesignSummary {
	return DesignSummary{ID: d.ID, Name: d.Name, Topology: d.Topology, TotalMassKG: d.TotalMassKG, CreatedAt: d.CreatedAt}
}

// Open connects to PostgreSQL. sslmode=require is appended when the
// connection string does not choose one.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	if connStr == "" {
		return nil, errors.New("database url is empty")
	}
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr += sep + "sslmode=require"
		} else {
			connStr += " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       SERIAL PRIMARY KEY,
	login    TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS designs (
	id            UUID PRIMARY KEY,
	user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	topology      TEXT NOT NULL,
	total_mass_kg DOUBLE PRECISION NOT NULL,
	input         JSONB NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS designs_user_created ON designs (user_id, created_at DESC);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetBylogin returns a zero id and empty hash for unknown logins.
func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) SaveDesign(ctx context.Context, d Design) (Design, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `INSERT INTO designs (id, user_id, name, topology, total_mass_kg, input, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.UserID, d.Name, d.Topology, d.TotalMassKG, []byte(d.Input), []byte(d.Result),
	).Scan(&d.CreatedAt)
	if err != nil {
		return Design{}, fmt.Errorf("insert design: %w", err)
	}
	return d, nil
}

func (r *PostgresUserRepository) ListDesigns(ctx context.Context, userID int) ([]DesignSummary, error) {
	query := `SELECT id, name, topology, total_mass_kg, created_at FROM designs
		WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DesignSummary{}
	for rows.Next() {
		var s DesignSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Topology, &s.TotalMassKG, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepository) GetDesign(ctx context.Context, userID int, id uuid.UUID) (Design, error) {
	d := Design{ID: id, UserID: userID}
	var input, result []byte
	query := `SELECT name, topology, total_mass_kg, input, result, created_at FROM designs
		WHERE id=$1 AND user_id=$2`
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&d.Name, &d.Topology, &d.TotalMassKG, &input, &result, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Design{}, ErrNotFound
	}
	if err != nil {
		return Design{}, err
	}
	d.Input, d.Result = input, result
	return d, nil
}
