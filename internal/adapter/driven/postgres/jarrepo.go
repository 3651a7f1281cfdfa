package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

var _ driven.JarStore = (*JarRepo)(nil)

// JarRepo stores idea jar items in PostgreSQL.
type JarRepo struct {
	db *sql.DB
}

func NewJarRepo(db *sql.DB) *JarRepo {
	return &JarRepo{db: db}
}

func (r *JarRepo) Add(ctx context.Context, item model.JarItem) (model.JarItem, error) {
	const query = `INSERT INTO jar_items (owner_code, text) VALUES ($1, $2) RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, item.OwnerCode, item.Text).Scan(&item.ID, &item.CreatedAt); err != nil {
		return model.JarItem{}, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *JarRepo) ListByOwners(ctx context.Context, ownerCodes []string) ([]model.JarItem, error) {
	if len(ownerCodes) == 0 {
		return nil, nil
	}

	query := `SELECT id, owner_code, text, created_at FROM jar_items WHERE owner_code IN (` +
		placeholders(1, len(ownerCodes)) + `) ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, stringArgs(ownerCodes)...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []model.JarItem
	for rows.Next() {
		var item model.JarItem
		if err := rows.Scan(&item.ID, &item.OwnerCode, &item.Text, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan jar item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jar items: %w", err)
	}

	return items, nil
}

func (r *JarRepo) Delete(ctx context.Context, id int64, ownerCodes []string) error {
	if len(ownerCodes) == 0 {
		return fmt.Errorf("delete jar item %d: %w", id, driven.ErrJarItemNotFound)
	}

	query := `DELETE FROM jar_items WHERE id = $1 AND owner_code IN (` + placeholders(2, len(ownerCodes)) + `)`
	args := append([]any{id}, stringArgs(ownerCodes)...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete jar item %d: %w", id, driven.ErrJarItemNotFound)
	}

	return nil
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
