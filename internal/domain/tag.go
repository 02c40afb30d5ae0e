package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label that can be attached to any number of customers.
// Names are unique across all tags.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TagWithUsage is a Tag plus the number of active customers carrying it.
type TagWithUsage struct {
	Tag
	CustomerCount int64
}

// MaxTagNameLength is the longest tag name accepted, counted in runes.
const MaxTagNameLength = 50
