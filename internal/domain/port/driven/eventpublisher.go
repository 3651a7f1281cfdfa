package driven

import (
	"context"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

// EventPublisher broadcasts partner link changes to interested consumers.
// Publishing is best effort; callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event model.PartnerEvent) error
}
