package repo

import "context"

// Tx exposes the repositories bound to a single transaction.
type Tx interface {
	Items() ItemRepository
	ChangeLogs() ChangeLogRepository
}

// Store groups every repository behind one backing store.
type Store interface {
	Items() ItemRepository
	ChangeLogs() ChangeLogRepository
	Users() UserRepository
	Metrics() MetricsRepository

	// Transact runs fn atomically. Any error returned by fn rolls back every
	// write made through tx.
	Transact(ctx context.Context, fn func(tx Tx) error) error
}
