package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `id, handle, auth_method, password_hash, provider, display_name, picture_url,
	unique_code, linked_partner_code, anniversary_date, created_at, updated_at`

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Create inserts a new account and returns it with ID and timestamps set.
func (r *AccountRepo) Create(ctx context.Context, account model.Account) (model.Account, error) {
	const query = `
		INSERT INTO accounts (handle, auth_method, password_hash, provider, display_name, picture_url,
			unique_code, linked_partner_code, anniversary_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)
	`

	now := time.Now().UTC().Truncate(time.Second)
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = account.CreatedAt

	result, err := r.db.Writer.ExecContext(ctx, query,
		account.Handle,
		string(account.AuthMethod),
		account.PasswordHash,
		account.Provider,
		account.DisplayName,
		account.PictureURL,
		account.UniqueCode,
		nullDate(account.AnniversaryDate),
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		return model.Account{}, fmt.Errorf("create account %s: %w", account.Handle, classifyUniqueErr(err))
	}

	account.ID, err = result.LastInsertId()
	if err != nil {
		return model.Account{}, fmt.Errorf("read account id: %w", err)
	}
	account.LinkedPartnerCode = ""

	return account, nil
}

// GetByCode returns the account with the given unique code.
func (r *AccountRepo) GetByCode(ctx context.Context, code string) (model.Account, error) {
	return getAccountByCode(ctx, r.db.Reader, code)
}

// GetByHandle returns the account with the given handle.
func (r *AccountRepo) GetByHandle(ctx context.Context, handle string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = ?`

	account, err := scanAccount(r.db.Reader.QueryRowContext(ctx, query, handle))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("get account by handle %s: %w", handle, driven.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account by handle %s: %w", handle, err)
	}

	return account, nil
}

// UpdateProfile replaces the presentation metadata of an account.
func (r *AccountRepo) UpdateProfile(ctx context.Context, code, displayName, pictureURL string) (model.Account, error) {
	const query = `UPDATE accounts SET display_name = ?, picture_url = ?, updated_at = ? WHERE unique_code = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, displayName, pictureURL, formatTime(time.Now().UTC()), code)
	if err != nil {
		return model.Account{}, fmt.Errorf("update profile %s: %w", code, err)
	}

	if err := requireRow(result, code); err != nil {
		return model.Account{}, err
	}

	return getAccountByCode(ctx, r.db.Writer, code)
}

// Link points the requester and the partner at each other in one transaction.
// Each UPDATE only succeeds while the row is unlinked or already points at the
// expected code, so a concurrent link to a third account makes the whole
// transaction roll back with model.ErrAlreadyLinkedElsewhere.
func (r *AccountRepo) Link(ctx context.Context, requesterCode, partnerCode string) (driven.LinkResult, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return driven.LinkResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	requester, err := getAccountByCode(ctx, tx, requesterCode)
	if err != nil {
		return driven.LinkResult{}, err
	}

	partner, err := getAccountByCode(ctx, tx, partnerCode)
	if err != nil {
		return driven.LinkResult{}, err
	}

	linked, err := model.CheckLink(requester, partner)
	if err != nil {
		return driven.LinkResult{}, err
	}
	if linked {
		return driven.LinkResult{Account: requester}, nil
	}

	now := time.Now().UTC().Truncate(time.Second)

	const query = `
		UPDATE accounts SET linked_partner_code = ?, updated_at = ?
		WHERE unique_code = ? AND (linked_partner_code IS NULL OR linked_partner_code = ?)
	`

	for _, pair := range [][2]string{
		{requester.UniqueCode, partner.UniqueCode},
		{partner.UniqueCode, requester.UniqueCode},
	} {
		result, err := tx.ExecContext(ctx, query, pair[1], formatTime(now), pair[0], pair[1])
		if err != nil {
			return driven.LinkResult{}, fmt.Errorf("link %s to %s: %w", pair[0], pair[1], err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return driven.LinkResult{}, fmt.Errorf("check rows affected: %w", err)
		}
		if rows == 0 {
			return driven.LinkResult{}, fmt.Errorf("link %s to %s: %w", pair[0], pair[1], model.ErrAlreadyLinkedElsewhere)
		}
	}

	if err := tx.Commit(); err != nil {
		return driven.LinkResult{}, fmt.Errorf("commit link: %w", err)
	}

	requester.LinkedPartnerCode = partner.UniqueCode
	requester.UpdatedAt = now

	return driven.LinkResult{Account: requester, Changed: true}, nil
}

// Unlink clears the link on code and, if it still points back, on the partner.
func (r *AccountRepo) Unlink(ctx context.Context, code string) (driven.UnlinkResult, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return driven.UnlinkResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := getAccountByCode(ctx, tx, code)
	if err != nil {
		return driven.UnlinkResult{}, err
	}
	if !account.IsLinked() {
		return driven.UnlinkResult{}, fmt.Errorf("unlink %s: %w", code, model.ErrNotLinked)
	}

	now := formatTime(time.Now().UTC())
	partnerCode := account.LinkedPartnerCode

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET linked_partner_code = NULL, updated_at = ? WHERE unique_code = ?`,
		now, code,
	); err != nil {
		return driven.UnlinkResult{}, fmt.Errorf("unlink %s: %w", code, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET linked_partner_code = NULL, updated_at = ? WHERE unique_code = ? AND linked_partner_code = ?`,
		now, partnerCode, code,
	); err != nil {
		return driven.UnlinkResult{}, fmt.Errorf("unlink partner %s: %w", partnerCode, err)
	}

	if err := tx.Commit(); err != nil {
		return driven.UnlinkResult{}, fmt.Errorf("commit unlink: %w", err)
	}

	account.LinkedPartnerCode = ""
	return driven.UnlinkResult{Account: account, FormerPartnerCode: partnerCode}, nil
}

// SetAnniversary writes the date on code and on a partner that links back.
// A dangling partner code updates the requester only.
func (r *AccountRepo) SetAnniversary(ctx context.Context, code string, date time.Time) (model.Account, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := getAccountByCode(ctx, tx, code)
	if err != nil {
		return model.Account{}, err
	}

	day := date.Format(model.DateLayout)
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET anniversary_date = ?, updated_at = ? WHERE unique_code = ?`,
		day, formatTime(now), code,
	); err != nil {
		return model.Account{}, fmt.Errorf("set anniversary %s: %w", code, err)
	}

	if account.IsLinked() {
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET anniversary_date = ?, updated_at = ? WHERE unique_code = ? AND linked_partner_code = ?`,
			day, formatTime(now), account.LinkedPartnerCode, code,
		); err != nil {
			return model.Account{}, fmt.Errorf("mirror anniversary to %s: %w", account.LinkedPartnerCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Account{}, fmt.Errorf("commit anniversary: %w", err)
	}

	stored, err := time.Parse(model.DateLayout, day)
	if err != nil {
		return model.Account{}, fmt.Errorf("parse anniversary: %w", err)
	}
	account.AnniversaryDate = &stored
	account.UpdatedAt = now

	return account, nil
}

func getAccountByCode(ctx context.Context, q queryRower, code string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE unique_code = ?`

	account, err := scanAccount(q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("get account %s: %w", code, driven.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account %s: %w", code, err)
	}

	return account, nil
}

func scanAccount(s scanner) (model.Account, error) {
	var (
		a                    model.Account
		authMethod           string
		linked, anniversary  sql.NullString
		createdAt, updatedAt string
	)

	err := s.Scan(
		&a.ID, &a.Handle, &authMethod, &a.PasswordHash, &a.Provider, &a.DisplayName, &a.PictureURL,
		&a.UniqueCode, &linked, &anniversary, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Account{}, err
	}

	a.AuthMethod = model.AuthMethod(authMethod)
	a.LinkedPartnerCode = linked.String

	if anniversary.Valid && anniversary.String != "" {
		d, err := time.Parse(model.DateLayout, anniversary.String)
		if err != nil {
			return model.Account{}, fmt.Errorf("parse anniversary_date: %w", err)
		}
		a.AnniversaryDate = &d
	}

	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Account{}, fmt.Errorf("parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Account{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return a, nil
}

// classifyUniqueErr maps SQLite unique constraint failures to port sentinels.
func classifyUniqueErr(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint") {
		return err
	}
	switch {
	case strings.Contains(msg, "accounts.handle"):
		return driven.ErrHandleTaken
	case strings.Contains(msg, "accounts.unique_code"):
		return driven.ErrCodeTaken
	default:
		return err
	}
}

func requireRow(result sql.Result, code string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", code, driven.ErrAccountNotFound)
	}
	return nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(model.DateLayout), Valid: true}
}
