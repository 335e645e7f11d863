package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const driverName = "pgx"

// Postgres is a BlobStore backed by one table of a PostgreSQL database
type Postgres struct {
	db    *sql.DB
	table string
}

var _ interfaces.BlobStore = &Postgres{}

type Option func(*Postgres)

// WithTable overrides the table name ("isogap_blobs"). Tests use it to
// isolate runs.
func WithTable(table string) Option {
	return func(p *Postgres) {
		p.table = table
	}
}

// New connects with dsn and ensures the blob table
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	if dsn == "" {
		return nil, goerr.New("postgres DSN is required")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}

	p := &Postgres{db: db, table: "isogap_blobs"}
	for _, opt := range opts {
		opt(p)
	}

	// #nosec G202 - table name is set by code, not by user input
	ddl := `CREATE TABLE IF NOT EXISTS ` + p.table + ` (
		key TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create blob table", goerr.V("table", p.table))
	}

	return p, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	// #nosec G202
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM `+p.table+` WHERE key = $1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to select blob", goerr.V("key", key))
	}
	return payload, nil
}

func (p *Postgres) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return goerr.New("key is required")
	}
	if data == nil {
		data = []byte{}
	}
	// #nosec G202
	_, err := p.db.ExecContext(ctx, `INSERT INTO `+p.table+` (key, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, data, time.Now().UTC())
	if err != nil {
		return goerr.Wrap(err, "failed to upsert blob", goerr.V("key", key))
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
