package model

import (
	"fmt"
	"strings"
	"time"
)

// AuthMethod identifies how an account proves its identity.
type AuthMethod string

const (
	// AuthMethodLocal accounts sign in with a handle and a bcrypt-hashed password.
	AuthMethodLocal AuthMethod = "local"
	// AuthMethodFederated accounts sign in through an external identity provider.
	AuthMethodFederated AuthMethod = "federated"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// UniqueCodeLength is the number of characters in an account's shareable code.
const UniqueCodeLength = 6

// Account is one person using the app. UniqueCode is assigned at creation and
// never changes. LinkedPartnerCode is empty while the account is unlinked.
type Account struct {
	ID                int64
	Handle            string
	AuthMethod        AuthMethod
	PasswordHash      string
	Provider          string
	DisplayName       string
	PictureURL        string
	UniqueCode        string
	LinkedPartnerCode string
	AnniversaryDate   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLinked reports whether the account points at a partner.
func (a Account) IsLinked() bool {
	return a.LinkedPartnerCode != ""
}

// Profile returns the public subset of the account shown to a partner.
func (a Account) Profile() PartnerProfile {
	return PartnerProfile{
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		PictureURL:  a.PictureURL,
	}
}

// PartnerProfile is what one partner may see of the other.
type PartnerProfile struct {
	Handle      string
	DisplayName string
	PictureURL  string
}

// NormalizeCode upper-cases and trims a user-supplied unique code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders an optional date, returning "" for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}
