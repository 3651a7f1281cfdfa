package model

import "time"

// PartnerEventType names a change in an account's partner link.
type PartnerEventType string

const (
	PartnerLinked   PartnerEventType = "partner.linked"
	PartnerUnlinked PartnerEventType = "partner.unlinked"
)

// PartnerEvent is broadcast after a link or unlink commits.
type PartnerEvent struct {
	Type        PartnerEventType
	Code        string
	PartnerCode string
	OccurredAt  time.Time
}
