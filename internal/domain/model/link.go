package model

import (
	"errors"
	"fmt"
)

// Partner linking rule violations. Both store adapters evaluate CheckLink
// inside their link transaction so the rules are identical across backends.
var (
	ErrSelfLink               = errors.New("cannot link an account to itself")
	ErrAlreadyLinkedElsewhere = errors.New("account is already linked to another partner")
	ErrNotLinked              = errors.New("account has no linked partner")
)

// CheckLink decides whether requester may be linked to candidate.
// It returns linked=true when both accounts already point at each other,
// in which case no write is needed.
func CheckLink(requester, candidate Account) (linked bool, err error) {
	if requester.UniqueCode == candidate.UniqueCode {
		return false, ErrSelfLink
	}

	if candidate.IsLinked() && candidate.LinkedPartnerCode != requester.UniqueCode {
		return false, fmt.Errorf("partner %s: %w", candidate.UniqueCode, ErrAlreadyLinkedElsewhere)
	}

	// The requester must unlink before pairing with someone new.
	if requester.IsLinked() && requester.LinkedPartnerCode != candidate.UniqueCode {
		return false, fmt.Errorf("requester %s: %w", requester.UniqueCode, ErrAlreadyLinkedElsewhere)
	}

	return requester.LinkedPartnerCode == candidate.UniqueCode &&
		candidate.LinkedPartnerCode == requester.UniqueCode, nil
}
