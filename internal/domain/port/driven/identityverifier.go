package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

// ErrInvalidIdentityToken indicates the federated token failed verification.
var ErrInvalidIdentityToken = errors.New("invalid identity token")

// IdentityVerifier checks an external identity token and returns its claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (model.FederatedIdentity, error)
}
