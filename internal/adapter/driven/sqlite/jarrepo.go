package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JarStore = (*JarRepo)(nil)

// JarRepo is the SQLite implementation of the JarStore port interface.
type JarRepo struct {
	db *DB
}

// NewJarRepo creates a new JarRepo backed by the given DB.
func NewJarRepo(db *DB) *JarRepo {
	return &JarRepo{db: db}
}

// Add inserts a jar item and returns it with ID and CreatedAt set.
func (r *JarRepo) Add(ctx context.Context, item model.JarItem) (model.JarItem, error) {
	const query = `INSERT INTO jar_items (owner_code, text, created_at) VALUES (?, ?, ?)`

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	result, err := r.db.Writer.ExecContext(ctx, query, item.OwnerCode, item.Text, formatTime(item.CreatedAt))
	if err != nil {
		return model.JarItem{}, fmt.Errorf("add jar item for %s: %w", item.OwnerCode, err)
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return model.JarItem{}, fmt.Errorf("read jar item id: %w", err)
	}

	return item, nil
}

// ListByOwners returns the items added by any of ownerCodes, newest first.
func (r *JarRepo) ListByOwners(ctx context.Context, ownerCodes []string) ([]model.JarItem, error) {
	if len(ownerCodes) == 0 {
		return nil, nil
	}

	query := `SELECT id, owner_code, text, created_at FROM jar_items WHERE owner_code IN (` +
		placeholders(len(ownerCodes)) + `) ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, stringArgs(ownerCodes)...)
	if err != nil {
		return nil, fmt.Errorf("list jar items: %w", err)
	}
	defer rows.Close()

	var items []model.JarItem
	for rows.Next() {
		var item model.JarItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.OwnerCode, &item.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan jar item: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jar items: %w", err)
	}

	return items, nil
}

// Delete removes item id if one of ownerCodes added it.
func (r *JarRepo) Delete(ctx context.Context, id int64, ownerCodes []string) error {
	if len(ownerCodes) == 0 {
		return fmt.Errorf("delete jar item %d: %w", id, driven.ErrJarItemNotFound)
	}

	query := `DELETE FROM jar_items WHERE id = ? AND owner_code IN (` + placeholders(len(ownerCodes)) + `)`
	args := append([]any{id}, stringArgs(ownerCodes)...)

	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete jar item %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete jar item %d: %w", id, driven.ErrJarItemNotFound)
	}

	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
