// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// CoupleViewModel holds everything the couple dashboard page renders.
type CoupleViewModel struct {
	Code        string
	Handle      string
	DisplayName string
	PictureURL  string
	QRPath      string
	CounterPath string
	JarPath     string
	CSRFToken   string

	Partner         *PartnerViewModel
	Counter         CounterViewModel
	NextAnniversary *NextAnniversaryViewModel
	JarItems        []JarItemViewModel
	IdeasEnabled    bool
}

// PartnerViewModel is the partner's public profile.
type PartnerViewModel struct {
	Handle      string
	DisplayName string
	PictureURL  string
}

// CounterViewModel is the live time-together widget. Set is false when no
// anniversary date is stored; Started is false while it lies in the future.
type CounterViewModel struct {
	Set     bool
	Started bool
	Since   string
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// NextAnniversaryViewModel is the countdown to the next anniversary.
type NextAnniversaryViewModel struct {
	Date      string
	DaysUntil int
	Years     int
}

// JarItemViewModel is one idea in the jar. HTML is sanitized markdown.
type JarItemViewModel struct {
	ID        int64
	HTML      string
	Mine      bool
	CreatedAt string
}
