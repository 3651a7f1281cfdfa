package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

// Sentinel errors returned by AccountStore implementations.
var (
	// ErrAccountNotFound indicates no account has the requested code or handle.
	ErrAccountNotFound = errors.New("account not found")

	// ErrHandleTaken indicates another account already uses the handle.
	ErrHandleTaken = errors.New("handle already taken")

	// ErrCodeTaken indicates a generated unique code collided with an existing one.
	ErrCodeTaken = errors.New("unique code already taken")
)

// LinkResult is returned by AccountStore.Link. Changed is false when the two
// accounts were already linked to each other and nothing was written.
type LinkResult struct {
	Account model.Account
	Changed bool
}

// UnlinkResult is returned by AccountStore.Unlink.
type UnlinkResult struct {
	Account           model.Account
	FormerPartnerCode string
}

// AccountStore defines the driven port for account persistence.
//
// Codes passed in are expected to be normalized with model.NormalizeCode.
// Link, Unlink and SetAnniversary write both partner rows inside a single
// transaction: either every row changes or none does.
type AccountStore interface {
	// Create inserts a new account. Returns ErrHandleTaken or ErrCodeTaken on
	// unique constraint violations.
	Create(ctx context.Context, account model.Account) (model.Account, error)
	GetByCode(ctx context.Context, code string) (model.Account, error)
	GetByHandle(ctx context.Context, handle string) (model.Account, error)
	UpdateProfile(ctx context.Context, code, displayName, pictureURL string) (model.Account, error)

	// Link applies model.CheckLink and, if allowed, points both accounts at
	// each other.
	Link(ctx context.Context, requesterCode, partnerCode string) (LinkResult, error)

	// Unlink clears the link on the account and on its partner when the
	// partner still points back. Returns model.ErrNotLinked when unlinked.
	Unlink(ctx context.Context, code string) (UnlinkResult, error)

	// SetAnniversary stores the date on the account and mirrors it to the
	// partner row when the link is symmetric.
	SetAnniversary(ctx context.Context, code string, date time.Time) (model.Account, error)
}
