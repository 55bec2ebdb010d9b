package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type PostgresItemRepository struct {
	db        dbtx
	forUpdate bool
}

func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

const itemColumns = `i.id, i.name, i.description, i.quantity, i.price, i.category, i.owner_id, COALESCE(u.username, ''), i.created_at, i.updated_at`

const itemFrom = ` FROM inventory_items i LEFT JOIN users u ON u.id = i.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.Price, &it.Category,
		&it.OwnerID, &it.OwnerUsername, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (r *PostgresItemRepository) Create(ctx context.Context, it models.Item) (models.Item, error) {
	query := `INSERT INTO inventory_items (name, description, quantity, price, category, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, it.Name, it.Description, it.Quantity, it.Price, it.Category,
		it.OwnerID, it.CreatedAt, it.UpdatedAt).Scan(&it.ID)
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return it, nil
}

func (r *PostgresItemRepository) getOne(ctx context.Context, where string, args ...any) (models.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE ` + where
	if r.forUpdate {
		query += ` FOR UPDATE OF i`
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id int64) (models.Item, error) {
	return r.getOne(ctx, `i.id = $1`, id)
}

func (r *PostgresItemRepository) GetByName(ctx context.Context, ownerID int64, name string) (models.Item, error) {
	return r.getOne(ctx, `i.owner_id = $1 AND i.name = $2 ORDER BY i.id LIMIT 1`, ownerID, name)
}

func (r *PostgresItemRepository) Update(ctx context.Context, it models.Item) (models.Item, error) {
	query := `UPDATE inventory_items
		SET name = $1, description = $2, quantity = $3, price = $4, category = $5, updated_at = $6
		WHERE id = $7
		RETURNING owner_id, created_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, it.Name, it.Description, it.Quantity, it.Price, it.Category,
		it.UpdatedAt, it.ID).Scan(&it.OwnerID, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	return it, nil
}

func (r *PostgresItemRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Names sort case-insensitively, then byte-wise, independent of the
// database collation. compareItems does the same for the memory store.
var itemOrderColumns = map[string][]string{
	OrderByName:        {`LOWER(i.name) COLLATE "C"`, `i.name COLLATE "C"`},
	OrderByQuantity:    {"i.quantity"},
	OrderByPrice:       {"i.price"},
	OrderByLastUpdated: {"i.updated_at"},
}

func itemFilterConditions(f ItemFilter) (string, []any, int) {
	query := " WHERE i.owner_id = $1"
	args := []any{f.OwnerID}
	argIdx := 2

	if f.Category != "" {
		query += fmt.Sprintf(" AND LOWER(i.category) = LOWER($%d)", argIdx)
		args = append(args, f.Category)
		argIdx++
	}
	if f.MinPrice != nil {
		query += fmt.Sprintf(" AND i.price >= $%d", argIdx)
		args = append(args, *f.MinPrice)
		argIdx++
	}
	if f.MaxPrice != nil {
		query += fmt.Sprintf(" AND i.price <= $%d", argIdx)
		args = append(args, *f.MaxPrice)
		argIdx++
	}
	if f.LowStock != nil {
		query += fmt.Sprintf(" AND i.quantity <= $%d", argIdx)
		args = append(args, *f.LowStock)
		argIdx++
	}
	for _, term := range f.SearchTerms() {
		query += fmt.Sprintf(" AND (i.name ILIKE $%d OR i.description ILIKE $%d OR i.category ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+escapeLike(term)+"%")
		argIdx++
	}

	return query, args, argIdx
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func itemOrderClause(ordering []OrderField) string {
	parts := make([]string, 0, len(ordering)+1)
	for _, o := range ordering {
		cols, ok := itemOrderColumns[o.Field]
		if !ok {
			continue
		}
		for _, col := range cols {
			if o.Desc {
				col += " DESC"
			}
			parts = append(parts, col)
		}
	}
	parts = append(parts, "i.id")
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (r *PostgresItemRepository) Filter(ctx context.Context, f ItemFilter) ([]models.Item, int, error) {
	conditions, args, argIdx := itemFilterConditions(f)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM inventory_items i" + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	query := `SELECT ` + itemColumns + itemFrom + conditions + itemOrderClause(f.ordering())
	if f.Limit != nil && *f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, *f.Limit)
		argIdx++
	}
	if f.Offset != nil && *f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to filter items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, totalCount, nil
}
