package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// TokenIssuer mints a session token for an account's unique code.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Session is returned by every successful sign-in.
type Session struct {
	Account model.Account
	Token   string
}

// IdentityService creates accounts and signs them in, either with local
// credentials or with a verified federated identity token.
type IdentityService struct {
	accounts driven.AccountStore
	verifier driven.IdentityVerifier
	tokens   TokenIssuer
	newCode  func() (string, error)
	logger   *slog.Logger
}

// NewIdentityService creates an IdentityService. verifier may be nil, in which
// case FederatedSignIn returns ErrFederationUnavailable.
func NewIdentityService(
	accounts driven.AccountStore,
	verifier driven.IdentityVerifier,
	tokens TokenIssuer,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		accounts: accounts,
		verifier: verifier,
		tokens:   tokens,
		newCode:  NewUniqueCode,
		logger:   logger,
	}
}

// SignUp creates a local account. The display name defaults to the handle.
func (s *IdentityService) SignUp(ctx context.Context, handle, password, displayName string) (Session, error) {
	handle = strings.TrimSpace(handle)
	if len(handle) < 3 || len(password) < 6 {
		return Session{}, fmt.Errorf("sign up: %w", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = handle
	}

	account, err := s.createWithCode(ctx, model.Account{
		Handle:       handle,
		AuthMethod:   model.AuthMethodLocal,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("account created", "code", account.UniqueCode, "auth_method", account.AuthMethod)
	return s.session(account)
}

// LogIn checks local credentials. Unknown handles, federated accounts and
// wrong passwords all return ErrInvalidCredentials.
func (s *IdentityService) LogIn(ctx context.Context, handle, password string) (Session, error) {
	account, err := s.accounts.GetByHandle(ctx, strings.TrimSpace(handle))
	if errors.Is(err, driven.ErrAccountNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("log in: %w", err)
	}

	if account.AuthMethod != model.AuthMethodLocal {
		return Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(account)
}

// FederatedSignIn verifies idToken and signs in the matching federated
// account, creating it on first use. A local account that already owns the
// email handle is never taken over.
func (s *IdentityService) FederatedSignIn(ctx context.Context, idToken string) (Session, error) {
	if s.verifier == nil {
		return Session{}, ErrFederationUnavailable
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return Session{}, fmt.Errorf("verify identity: %w", err)
	}
	if identity.Email == "" {
		return Session{}, fmt.Errorf("identity has no email: %w", driven.ErrInvalidIdentityToken)
	}

	existing, err := s.accounts.GetByHandle(ctx, identity.Email)
	switch {
	case err == nil:
		if existing.AuthMethod != model.AuthMethodFederated {
			return Session{}, fmt.Errorf("federated sign-in %s: %w", identity.Email, driven.ErrHandleTaken)
		}
		if identity.Name != existing.DisplayName || identity.Picture != existing.PictureURL {
			existing, err = s.accounts.UpdateProfile(ctx, existing.UniqueCode, identity.Name, identity.Picture)
			if err != nil {
				return Session{}, fmt.Errorf("refresh profile: %w", err)
			}
		}
		return s.session(existing)

	case errors.Is(err, driven.ErrAccountNotFound):
		account, err := s.createWithCode(ctx, model.Account{
			Handle:      identity.Email,
			AuthMethod:  model.AuthMethodFederated,
			Provider:    identity.Provider,
			DisplayName: identity.Name,
			PictureURL:  identity.Picture,
		})
		if err != nil {
			return Session{}, err
		}
		s.logger.Info("account created", "code", account.UniqueCode, "auth_method", account.AuthMethod, "provider", account.Provider)
		return s.session(account)

	default:
		return Session{}, fmt.Errorf("federated sign-in: %w", err)
	}
}

// Account returns the account for code.
func (s *IdentityService) Account(ctx context.Context, code string) (model.Account, error) {
	return s.accounts.GetByCode(ctx, model.NormalizeCode(code))
}

func (s *IdentityService) createWithCode(ctx context.Context, account model.Account) (model.Account, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return model.Account{}, err
		}
		account.UniqueCode = code

		created, err := s.accounts.Create(ctx, account)
		if errors.Is(err, driven.ErrCodeTaken) {
			s.logger.Warn("unique code collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return model.Account{}, err
		}
		return created, nil
	}

	return model.Account{}, fmt.Errorf("create account %s after %d attempts: %w", account.Handle, maxCodeAttempts, driven.ErrCodeTaken)
}

func (s *IdentityService) session(account model.Account) (Session, error) {
	token, err := s.tokens.Issue(account.UniqueCode)
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}
	return Session{Account: account, Token: token}, nil
}
