package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// Link outcomes reported to the observer installed with WithLinkObserver.
const (
	OutcomeLinked                 = "linked"
	OutcomeAlreadyLinked          = "already_linked"
	OutcomeSelfLink               = "self_link"
	OutcomeAlreadyLinkedElsewhere = "already_linked_elsewhere"
	OutcomeNotFound               = "not_found"
	OutcomeError                  = "error"
)

// PartnerService owns the state two partners share: the link itself and
// the anniversary date mirrored across both accounts.
type PartnerService struct {
	accounts driven.AccountStore
	events   driven.EventPublisher
	observe  func(outcome string)
	now      func() time.Time
	logger   *slog.Logger
}

// PartnerOption configures optional PartnerService behaviour.
type PartnerOption func(*PartnerService)

// WithLinkObserver registers fn to receive the outcome of every link attempt.
func WithLinkObserver(fn func(outcome string)) PartnerOption {
	return func(s *PartnerService) { s.observe = fn }
}

// NewPartnerService creates a PartnerService. events may be nil.
func NewPartnerService(accounts driven.AccountStore, events driven.EventPublisher, logger *slog.Logger, opts ...PartnerOption) *PartnerService {
	s := &PartnerService{
		accounts: accounts,
		events:   events,
		observe:  func(string) {},
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LinkPartner links the requester and the partner symmetrically and returns
// the requester's updated account. Linking two accounts that already point
// at each other succeeds without writing.
func (s *PartnerService) LinkPartner(ctx context.Context, requesterCode, partnerCode string) (model.Account, error) {
	requesterCode = model.NormalizeCode(requesterCode)
	partnerCode = model.NormalizeCode(partnerCode)

	if requesterCode == "" || partnerCode == "" {
		return model.Account{}, fmt.Errorf("link partner: %w", ErrInvalidInput)
	}
	if requesterCode == partnerCode {
		s.observe(OutcomeSelfLink)
		return model.Account{}, model.ErrSelfLink
	}

	result, err := s.accounts.Link(ctx, requesterCode, partnerCode)
	s.observe(linkOutcome(result, err))
	if err != nil {
		return model.Account{}, err
	}

	if result.Changed {
		s.logger.Info("partners linked", "code", requesterCode, "partner", partnerCode)
		s.publish(ctx, model.PartnerLinked, requesterCode, partnerCode)
	}

	return result.Account, nil
}

// UnlinkPartner clears the link on both sides.
func (s *PartnerService) UnlinkPartner(ctx context.Context, code string) (model.Account, error) {
	code = model.NormalizeCode(code)

	result, err := s.accounts.Unlink(ctx, code)
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("partners unlinked", "code", code, "partner", result.FormerPartnerCode)
	s.publish(ctx, model.PartnerUnlinked, code, result.FormerPartnerCode)

	return result.Account, nil
}

// SetAnniversary parses a YYYY-MM-DD date and stores it on the account and,
// when linked, on its partner.
func (s *PartnerService) SetAnniversary(ctx context.Context, code, date string) (model.Account, error) {
	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	return s.accounts.SetAnniversary(ctx, model.NormalizeCode(code), parsed)
}

func (s *PartnerService) publish(ctx context.Context, typ model.PartnerEventType, code, partnerCode string) {
	if s.events == nil {
		return
	}

	event := model.PartnerEvent{
		Type:        typ,
		Code:        code,
		PartnerCode: partnerCode,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish partner event", "type", typ, "code", code, "error", err)
	}
}

func linkOutcome(result driven.LinkResult, err error) string {
	switch {
	case err == nil && result.Changed:
		return OutcomeLinked
	case err == nil:
		return OutcomeAlreadyLinked
	case errors.Is(err, model.ErrSelfLink):
		return OutcomeSelfLink
	case errors.Is(err, model.ErrAlreadyLinkedElsewhere):
		return OutcomeAlreadyLinkedElsewhere
	case errors.Is(err, driven.ErrAccountNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
