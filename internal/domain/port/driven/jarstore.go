package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

// ErrJarItemNotFound indicates the item does not exist or belongs to another couple.
var ErrJarItemNotFound = errors.New("jar item not found")

// JarStore defines the driven port for idea jar persistence.
type JarStore interface {
	Add(ctx context.Context, item model.JarItem) (model.JarItem, error)

	// ListByOwners returns items added by any of the given codes, newest first.
	ListByOwners(ctx context.Context, ownerCodes []string) ([]model.JarItem, error)

	// Delete removes the item only if its owner is one of ownerCodes.
	Delete(ctx context.Context, id int64, ownerCodes []string) error
}
