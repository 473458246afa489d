package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a healthcare site or organisation that service logs are recorded
// against. Names are unique among live clients (case-insensitive).
type Client struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted returns true if the client has been soft-deleted.
func (c *Client) IsDeleted() bool { return c.DeletedAt != nil }
