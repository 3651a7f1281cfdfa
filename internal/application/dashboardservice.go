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

// Dashboard is the read-only view of an account and the state it shares with
// its partner. Partner and Projection are nil when unavailable.
type Dashboard struct {
	Account    model.Account
	Partner    *model.PartnerProfile
	Projection *Projection
}

// DashboardService assembles read-only views from the account store.
// Nothing here writes; projections are recomputed on every call.
type DashboardService struct {
	accounts driven.AccountStore
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewDashboardService creates a DashboardService computing projections in loc.
func NewDashboardService(accounts driven.AccountStore, loc *time.Location, logger *slog.Logger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		accounts: accounts,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// PartnerProfile returns the public profile of code's partner. It returns
// model.ErrNotLinked when code has no partner and driven.ErrAccountNotFound
// when either account is missing.
func (s *DashboardService) PartnerProfile(ctx context.Context, code string) (model.PartnerProfile, error) {
	self, err := s.accounts.GetByCode(ctx, model.NormalizeCode(code))
	if err != nil {
		return model.PartnerProfile{}, err
	}

	if !self.IsLinked() {
		return model.PartnerProfile{}, fmt.Errorf("partner of %s: %w", self.UniqueCode, model.ErrNotLinked)
	}

	partner, err := s.accounts.GetByCode(ctx, self.LinkedPartnerCode)
	if err != nil {
		return model.PartnerProfile{}, fmt.Errorf("partner of %s: %w", self.UniqueCode, err)
	}

	return partner.Profile(), nil
}

// Dashboard returns the account, its partner's profile and the anniversary
// projection at the current time.
func (s *DashboardService) Dashboard(ctx context.Context, code string) (Dashboard, error) {
	account, err := s.accounts.GetByCode(ctx, model.NormalizeCode(code))
	if err != nil {
		return Dashboard{}, err
	}

	view := Dashboard{Account: account}

	if account.AnniversaryDate != nil {
		p := Project(*account.AnniversaryDate, s.now(), s.loc)
		view.Projection = &p
	}

	if account.IsLinked() {
		partner, err := s.accounts.GetByCode(ctx, account.LinkedPartnerCode)
		switch {
		case err == nil:
			profile := partner.Profile()
			view.Partner = &profile
		case errors.Is(err, driven.ErrAccountNotFound):
			s.logger.Warn("dangling partner link", "code", account.UniqueCode, "partner", account.LinkedPartnerCode)
		default:
			return Dashboard{}, err
		}
	}

	return view, nil
}
