// Package clients manages the customer registry for the CRM surface.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer the business invoices.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListFilter narrows client listings.
type ListFilter struct {
	Search   string
	IsActive *bool
}

// UpdateInput carries optional field updates.
type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}
