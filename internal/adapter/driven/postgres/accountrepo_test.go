package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

const (
	lockQuery   = `(?s)^SELECT .+ FROM accounts WHERE unique_code = \$1 FOR UPDATE$`
	linkQuery   = `(?s)UPDATE accounts SET linked_partner_code = \$1, updated_at = now\(\)\s+WHERE unique_code = \$2`
	insertQuery = `(?s)^\s*INSERT INTO accounts .+ RETURNING id, created_at, updated_at\s*$`
)

var columns = []string{
	"id", "handle", "auth_method", "password_hash", "provider", "display_name", "picture_url",
	"unique_code", "linked_partner_code", "anniversary_date", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAccountRepo(db), mock
}

func accountRow(handle, code string, linked any) *sqlmock.Rows {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		int64(1), handle, "local", "hash", "", handle, "",
		code, linked, nil, now, now,
	)
}

func TestAccountRepo_Link_LocksInCodeOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", nil))
	mock.ExpectQuery(lockQuery).WithArgs("BBBBBB").WillReturnRows(accountRow("bob", "BBBBBB", nil))
	mock.ExpectExec(linkQuery).WithArgs("AAAAAA", "BBBBBB").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(linkQuery).WithArgs("BBBBBB", "AAAAAA").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Link(context.Background(), "BBBBBB", "AAAAAA")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, "bob", result.Account.Handle)
	assert.Equal(t, "AAAAAA", result.Account.LinkedPartnerCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Link_AlreadyLinkedToEachOther(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", "BBBBBB"))
	mock.ExpectQuery(lockQuery).WithArgs("BBBBBB").WillReturnRows(accountRow("bob", "BBBBBB", "AAAAAA"))
	mock.ExpectCommit()

	result, err := repo.Link(context.Background(), "AAAAAA", "BBBBBB")
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Link_RollsBackWhenSecondWriteFails(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", nil))
	mock.ExpectQuery(lockQuery).WithArgs("BBBBBB").WillReturnRows(accountRow("bob", "BBBBBB", nil))
	mock.ExpectExec(linkQuery).WithArgs("BBBBBB", "AAAAAA").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(linkQuery).WithArgs("AAAAAA", "BBBBBB").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Link(context.Background(), "AAAAAA", "BBBBBB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Link_LostRace(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", nil))
	mock.ExpectQuery(lockQuery).WithArgs("BBBBBB").WillReturnRows(accountRow("bob", "BBBBBB", nil))
	mock.ExpectExec(linkQuery).WithArgs("BBBBBB", "AAAAAA").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(linkQuery).WithArgs("AAAAAA", "BBBBBB").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Link(context.Background(), "AAAAAA", "BBBBBB")
	assert.ErrorIs(t, err, model.ErrAlreadyLinkedElsewhere)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Link_PartnerLinkedElsewhere(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("BBBBBB").WillReturnRows(accountRow("bob", "BBBBBB", "AAAAAA"))
	mock.ExpectQuery(lockQuery).WithArgs("CCCCCC").WillReturnRows(accountRow("carol", "CCCCCC", nil))
	mock.ExpectRollback()

	_, err := repo.Link(context.Background(), "CCCCCC", "BBBBBB")
	assert.ErrorIs(t, err, model.ErrAlreadyLinkedElsewhere)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Link_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Link(context.Background(), "AAAAAA", "BBBBBB")
	assert.ErrorIs(t, err, driven.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_SetAnniversary_Mirrors(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	date := time.Date(2022, 10, 26, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", "BBBBBB"))
	mock.ExpectExec(`UPDATE accounts SET anniversary_date = \$1, updated_at = now\(\) WHERE unique_code = \$2$`).
		WithArgs(date, "AAAAAA").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET anniversary_date = \$1, updated_at = now\(\) WHERE unique_code = \$2 AND linked_partner_code = \$3`).
		WithArgs(date, "BBBBBB", "AAAAAA").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	account, err := repo.SetAnniversary(context.Background(), "AAAAAA", date)
	require.NoError(t, err)
	assert.Equal(t, "2022-10-26", model.FormatDate(account.AnniversaryDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Unlink_NotLinked(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("AAAAAA").WillReturnRows(accountRow("alice", "AAAAAA", nil))
	mock.ExpectRollback()

	_, err := repo.Unlink(context.Background(), "AAAAAA")
	assert.ErrorIs(t, err, model.ErrNotLinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Create_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"accounts_handle_key", driven.ErrHandleTaken},
		{"accounts_unique_code_key", driven.ErrCodeTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(insertQuery).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), model.Account{
				Handle: "alice", AuthMethod: model.AuthMethodLocal, UniqueCode: "AAAAAA",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAccountRepo_Create_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "local", "hash", "", "alice", "", "AAAAAA", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	account, err := repo.Create(context.Background(), model.Account{
		Handle: "alice", AuthMethod: model.AuthMethodLocal, PasswordHash: "hash",
		DisplayName: "alice", UniqueCode: "AAAAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, now, account.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err = RunMigrations(context.Background(), db)
	assert.ErrorContains(t, err, "boom")
}
