package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// JarService manages the idea jar shared by a linked couple. Either partner
// sees and may remove every item the two of them added.
type JarService struct {
	accounts driven.AccountStore
	jar      driven.JarStore
	logger   *slog.Logger
}

// NewJarService creates a JarService.
func NewJarService(accounts driven.AccountStore, jar driven.JarStore, logger *slog.Logger) *JarService {
	return &JarService{accounts: accounts, jar: jar, logger: logger}
}

// ListItems returns the couple's items, newest first.
func (s *JarService) ListItems(ctx context.Context, code string) ([]model.JarItem, error) {
	owners, err := s.coupleCodes(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.jar.ListByOwners(ctx, owners)
}

// AddItem drops text into code's jar.
func (s *JarService) AddItem(ctx context.Context, code, text string) (model.JarItem, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > model.MaxJarItemLength {
		return model.JarItem{}, fmt.Errorf("jar item must be 1-%d characters: %w", model.MaxJarItemLength, ErrInvalidInput)
	}

	account, err := s.accounts.GetByCode(ctx, model.NormalizeCode(code))
	if err != nil {
		return model.JarItem{}, err
	}

	item, err := s.jar.Add(ctx, model.JarItem{OwnerCode: account.UniqueCode, Text: text})
	if err != nil {
		return model.JarItem{}, err
	}

	s.logger.Debug("jar item added", "code", account.UniqueCode, "id", item.ID)
	return item, nil
}

// RemoveItem deletes an item added by code or by code's partner.
func (s *JarService) RemoveItem(ctx context.Context, code string, id int64) error {
	owners, err := s.coupleCodes(ctx, code)
	if err != nil {
		return err
	}

	return s.jar.Delete(ctx, id, owners)
}

// coupleCodes returns code plus its partner's code when the link is symmetric.
func (s *JarService) coupleCodes(ctx context.Context, code string) ([]string, error) {
	account, err := s.accounts.GetByCode(ctx, model.NormalizeCode(code))
	if err != nil {
		return nil, err
	}

	codes := []string{account.UniqueCode}
	if !account.IsLinked() {
		return codes, nil
	}

	partner, err := s.accounts.GetByCode(ctx, account.LinkedPartnerCode)
	if err != nil {
		s.logger.Warn("jar partner lookup failed", "code", account.UniqueCode, "error", err)
		return codes, nil
	}
	if partner.LinkedPartnerCode == account.UniqueCode {
		codes = append(codes, partner.UniqueCode)
	}

	return codes, nil
}
