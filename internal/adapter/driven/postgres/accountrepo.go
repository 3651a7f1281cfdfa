package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

var _ driven.AccountStore = (*AccountRepo)(nil)

const uniqueViolation = "23505"

const accountColumns = `id, handle, auth_method, password_hash, provider, display_name, picture_url,
	unique_code, linked_partner_code, anniversary_date, created_at, updated_at`

// AccountRepo stores accounts in PostgreSQL. Multi-row writes lock the
// affected rows with SELECT ... FOR UPDATE in unique code order.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, account model.Account) (model.Account, error) {
	const query = `
		INSERT INTO accounts (handle, auth_method, password_hash, provider, display_name, picture_url,
			unique_code, anniversary_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	var anniversary sql.NullTime
	if account.AnniversaryDate != nil {
		anniversary = sql.NullTime{Time: *account.AnniversaryDate, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		account.Handle, string(account.AuthMethod), account.PasswordHash, account.Provider,
		account.DisplayName, account.PictureURL, account.UniqueCode, anniversary,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return model.Account{}, fmt.Errorf("create account %s: %w", account.Handle, classifyUniqueErr(err))
	}
	account.LinkedPartnerCode = ""

	return account, nil
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (model.Account, error) {
	return getAccount(ctx, r.db, `SELECT `+accountColumns+` FROM accounts WHERE unique_code = $1`, code)
}

func (r *AccountRepo) GetByHandle(ctx context.Context, handle string) (model.Account, error) {
	return getAccount(ctx, r.db, `SELECT `+accountColumns+` FROM accounts WHERE handle = $1`, handle)
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, code, displayName, pictureURL string) (model.Account, error) {
	query := `UPDATE accounts SET display_name = $1, picture_url = $2, updated_at = now()
		WHERE unique_code = $3 RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, displayName, pictureURL, code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("update profile %s: %w", code, driven.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("update profile %s: %w", code, err)
	}

	return account, nil
}

// Link locks both rows, applies model.CheckLink and writes both sides.
func (r *AccountRepo) Link(ctx context.Context, requesterCode, partnerCode string) (driven.LinkResult, error) {
	var result driven.LinkResult

	err := withTx(ctx, r.db, func(ctx context.Context, tx dbtx) error {
		locked, err := lockAccounts(ctx, tx, requesterCode, partnerCode)
		if err != nil {
			return err
		}
		requester, partner := locked[requesterCode], locked[partnerCode]

		linked, err := model.CheckLink(requester, partner)
		if err != nil {
			return err
		}
		if linked {
			result = driven.LinkResult{Account: requester}
			return nil
		}

		const query = `
			UPDATE accounts SET linked_partner_code = $1, updated_at = now()
			WHERE unique_code = $2 AND (linked_partner_code IS NULL OR linked_partner_code = $1)
		`

		if err := casExec(ctx, tx, query, partner.UniqueCode, requester.UniqueCode); err != nil {
			return fmt.Errorf("link %s to %s: %w", requester.UniqueCode, partner.UniqueCode, err)
		}
		if err := casExec(ctx, tx, query, requester.UniqueCode, partner.UniqueCode); err != nil {
			return fmt.Errorf("link %s to %s: %w", partner.UniqueCode, requester.UniqueCode, err)
		}

		requester.LinkedPartnerCode = partner.UniqueCode
		requester.UpdatedAt = time.Now().UTC()
		result = driven.LinkResult{Account: requester, Changed: true}
		return nil
	})
	if err != nil {
		return driven.LinkResult{}, err
	}

	return result, nil
}

func (r *AccountRepo) Unlink(ctx context.Context, code string) (driven.UnlinkResult, error) {
	var result driven.UnlinkResult

	err := withTx(ctx, r.db, func(ctx context.Context, tx dbtx) error {
		account, err := getAccount(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE unique_code = $1 FOR UPDATE`, code)
		if err != nil {
			return err
		}
		if !account.IsLinked() {
			return fmt.Errorf("unlink %s: %w", code, model.ErrNotLinked)
		}
		partnerCode := account.LinkedPartnerCode

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET linked_partner_code = NULL, updated_at = now() WHERE unique_code = $1`, code,
		); err != nil {
			return fmt.Errorf("unlink %s: %w", code, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET linked_partner_code = NULL, updated_at = now() WHERE unique_code = $1 AND linked_partner_code = $2`,
			partnerCode, code,
		); err != nil {
			return fmt.Errorf("unlink partner %s: %w", partnerCode, err)
		}

		account.LinkedPartnerCode = ""
		result = driven.UnlinkResult{Account: account, FormerPartnerCode: partnerCode}
		return nil
	})
	if err != nil {
		return driven.UnlinkResult{}, err
	}

	return result, nil
}

func (r *AccountRepo) SetAnniversary(ctx context.Context, code string, date time.Time) (model.Account, error) {
	var account model.Account

	err := withTx(ctx, r.db, func(ctx context.Context, tx dbtx) error {
		var err error
		account, err = getAccount(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE unique_code = $1 FOR UPDATE`, code)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET anniversary_date = $1, updated_at = now() WHERE unique_code = $2`, date, code,
		); err != nil {
			return fmt.Errorf("set anniversary %s: %w", code, err)
		}

		if account.IsLinked() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE accounts SET anniversary_date = $1, updated_at = now() WHERE unique_code = $2 AND linked_partner_code = $3`,
				date, account.LinkedPartnerCode, code,
			); err != nil {
				return fmt.Errorf("mirror anniversary to %s: %w", account.LinkedPartnerCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	account.AnniversaryDate = &day
	return account, nil
}

// lockAccounts selects both rows FOR UPDATE, lowest code first, so two
// concurrent links over the same pair cannot deadlock.
func lockAccounts(ctx context.Context, tx dbtx, a, b string) (map[string]model.Account, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE unique_code = $1 FOR UPDATE`
	locked := make(map[string]model.Account, 2)

	for _, code := range []string{first, second} {
		if _, ok := locked[code]; ok {
			continue
		}
		account, err := getAccount(ctx, tx, query, code)
		if err != nil {
			return nil, err
		}
		locked[code] = account
	}

	return locked, nil
}

func casExec(ctx context.Context, tx dbtx, query, target, code string) error {
	res, err := tx.ExecContext(ctx, query, target, code)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAlreadyLinkedElsewhere
	}
	return nil
}

func getAccount(ctx context.Context, q dbtx, query, key string) (model.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("get account %s: %w", key, driven.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func scanAccount(row *sql.Row) (model.Account, error) {
	var (
		a           model.Account
		authMethod  string
		linked      sql.NullString
		anniversary sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.Handle, &authMethod, &a.PasswordHash, &a.Provider, &a.DisplayName, &a.PictureURL,
		&a.UniqueCode, &linked, &anniversary, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return model.Account{}, err
	}

	a.AuthMethod = model.AuthMethod(authMethod)
	a.LinkedPartnerCode = linked.String
	if anniversary.Valid {
		d := anniversary.Time.UTC()
		a.AnniversaryDate = &d
	}

	return a, nil
}

func classifyUniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_handle_key":
		return driven.ErrHandleTaken
	case "accounts_unique_code_key":
		return driven.ErrCodeTaken
	default:
		return err
	}
}
