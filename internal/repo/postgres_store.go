package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const queryTimeout = 3 * time.Second

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Items() ItemRepository {
	return NewPostgresItemRepository(s.db)
}

func (s *PostgresStore) ChangeLogs() ChangeLogRepository {
	return NewPostgresChangeLogRepository(s.db)
}

func (s *PostgresStore) Users() UserRepository {
	return NewPostgresUserRepository(s.db)
}

func (s *PostgresStore) Metrics() MetricsRepository {
	return NewPostgresMetricsRepository(s.db)
}

type postgresTx struct {
	tx *sql.Tx
}

// Item reads inside a transaction lock the row until commit.
func (t postgresTx) Items() ItemRepository {
	return &PostgresItemRepository{db: t.tx, forUpdate: true}
}

func (t postgresTx) ChangeLogs() ChangeLogRepository {
	return &PostgresChangeLogRepository{db: t.tx}
}

func (s *PostgresStore) Transact(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(postgresTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// uniqueErr maps unique constraint violations on users to the repository sentinels.
func uniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	}
	return err
}
