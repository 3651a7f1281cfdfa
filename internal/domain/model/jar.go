package model

import "time"

// MaxJarItemLength caps the text of a single idea jar item, in characters.
const MaxJarItemLength = 500

// JarItem is one note dropped into a couple's shared idea jar.
// OwnerCode is the unique code of the account that added it.
type JarItem struct {
	ID        int64
	OwnerCode string
	Text      string
	CreatedAt time.Time
}
