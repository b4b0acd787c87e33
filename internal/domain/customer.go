package domain

import "time"

// Customer is a buyer unified across platforms by email. Sync creates a
// customer on the first encounter of a new email and never deletes one.
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
