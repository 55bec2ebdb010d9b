package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type PostgresChangeLogRepository struct {
	db dbtx
}

func NewPostgresChangeLogRepository(db *sql.DB) *PostgresChangeLogRepository {
	return &PostgresChangeLogRepository{db: db}
}

const defaultLimit = 100

const changeLogColumns = `c.id, c.item_id, c.owner_id, c.changed_by, COALESCE(u.username, ''), c.old_quantity, c.new_quantity, c.change_type, c.change_date`

const changeLogFrom = ` FROM inventory_change_logs c LEFT JOIN users u ON u.id = c.changed_by`

func scanChangeLog(row rowScanner) (models.ChangeLog, error) {
	var (
		l         models.ChangeLog
		changedBy sql.NullInt64
	)
	err := row.Scan(&l.ID, &l.ItemID, &l.OwnerID, &changedBy, &l.ChangedByUsername,
		&l.OldQuantity, &l.NewQuantity, &l.ChangeType, &l.ChangeDate)
	if changedBy.Valid {
		l.ChangedBy = &changedBy.Int64
	}
	return l, err
}

// Append inserts a new change log entry.
func (r *PostgresChangeLogRepository) Append(ctx context.Context, l models.ChangeLog) (models.ChangeLog, error) {
	query := `INSERT INTO inventory_change_logs (item_id, owner_id, changed_by, old_quantity, new_quantity, change_type, change_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var changedBy sql.NullInt64
	if l.ChangedBy != nil {
		changedBy = sql.NullInt64{Int64: *l.ChangedBy, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query, l.ItemID, l.OwnerID, changedBy, l.OldQuantity, l.NewQuantity,
		string(l.ChangeType), l.ChangeDate).Scan(&l.ID)
	if err != nil {
		return models.ChangeLog{}, fmt.Errorf("failed to insert change log: %w", err)
	}
	return l, nil
}

func (r *PostgresChangeLogRepository) GetByID(ctx context.Context, id int64) (models.ChangeLog, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	l, err := scanChangeLog(r.db.QueryRowContext(ctx, `SELECT `+changeLogColumns+changeLogFrom+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChangeLog{}, ErrChangeNotFound
	}
	return l, err
}

// buildWhereClause constructs the WHERE clause and returns arguments
func (r *PostgresChangeLogRepository) buildWhereClause(f ChangeLogFilter) (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	argIdx := 1

	if f.OwnerID != nil {
		where += fmt.Sprintf(" AND c.owner_id = $%d", argIdx)
		args = append(args, *f.OwnerID)
		argIdx++
	}
	if f.ItemID != nil {
		where += fmt.Sprintf(" AND c.item_id = $%d", argIdx)
		args = append(args, *f.ItemID)
		argIdx++
	}
	if f.ChangeType != "" {
		where += fmt.Sprintf(" AND c.change_type = $%d", argIdx)
		args = append(args, string(f.ChangeType))
		argIdx++
	}
	if f.Since != nil {
		where += fmt.Sprintf(" AND c.change_date >= $%d", argIdx)
		args = append(args, *f.Since)
		argIdx++
	}
	if f.Until != nil {
		where += fmt.Sprintf(" AND c.change_date <= $%d", argIdx)
		args = append(args, *f.Until)
	}
	return where, args
}

// Filter returns matching entries newest first. Without an explicit limit at
// most defaultLimit rows are returned; a negative limit lifts the cap.
func (r *PostgresChangeLogRepository) Filter(ctx context.Context, f ChangeLogFilter) ([]models.ChangeLog, int, error) {
	where, args := r.buildWhereClause(f)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_change_logs c"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}
	if f.Offset != nil && *f.Offset >= total {
		return []models.ChangeLog{}, total, nil
	}

	query := `SELECT ` + changeLogColumns + changeLogFrom + where + ` ORDER BY c.change_date DESC, c.id DESC`
	argIdx := len(args) + 1
	limit := defaultLimit
	if f.Limit != nil {
		limit = *f.Limit
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
		argIdx++
	}
	if f.Offset != nil && *f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	logs := []models.ChangeLog{}
	for rows.Next() {
		l, err := scanChangeLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
